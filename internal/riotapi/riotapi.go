package riotapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"

	"lpwatch/internal/common"

	"github.com/rs/zerolog/log"
)

// Riot schema
const RIOT_SCHEMA = "https://%s.api.riotgames.com"

// Urls that help decide the version of the data dragon files to download
const VERSIONS_JSON = "https://ddragon.leagueoflegends.com/api/versions.json"
const REALM = "https://ddragon.leagueoflegends.com/realms/euw.json"

// Routes inside the riot API
const ROUTE_ACCOUNT_PUUID = "/riot/account/v1/accounts/by-riot-id/%s/%s"
const ROUTE_ACCOUNT_RIOT_ID = "/riot/account/v1/accounts/by-puuid/%s"
const ROUTE_LEAGUE = "/lol/league/v4/entries/by-puuid/%s"
const ROUTE_MATCH_IDS = "/lol/match/v5/matches/by-puuid/%s/ids"
const ROUTE_MATCH = "/lol/match/v5/matches/%s"
const ROUTE_TFT_LEAGUE = "/tft/league/v1/by-puuid/%s"
const ROUTE_TFT_MATCH_IDS = "/tft/match/v1/matches/by-puuid/%s/ids"
const ROUTE_TFT_MATCH = "/tft/match/v1/matches/%s"

// Dragon route to the square icon of a champion
const ROUTE_CHAMPION_ICON = "https://ddragon.leagueoflegends.com/cdn/%s/img/champion/%s.png"

// Ranked emblems
const ROUTE_EMBLEM = "https://raw.communitydragon.org/latest/plugins/rcp-fe-lol-static-assets/global/default/images/ranked-emblem/emblem-%s.png"

// Queue id of ranked solo/duo, the only queue polled when flex tracking is off
const SOLO_QUEUE_ID = 420

// Only the latest match matters for detection
const MATCH_IDS_COUNT = 1

type RiotApi struct {
	proxy   *common.Proxy
	apiKey  string
	tftKey  string
	mu      sync.Mutex
	riotIds map[Puuid]RiotId
	version string
}

// The TFT key can be empty, in which case the League key is used for both titles
func NewRiotApi(proxy *common.Proxy, apiKey string, tftApiKey string) *RiotApi {

	var riotapi RiotApi

	riotapi.proxy = proxy
	riotapi.apiKey = apiKey
	riotapi.tftKey = tftApiKey
	if riotapi.tftKey == "" {
		riotapi.tftKey = apiKey
	}
	riotapi.riotIds = map[Puuid]RiotId{}

	return &riotapi
}

// Resolve a riot id into the two puuids of the player
func (riotapi *RiotApi) GetSummonerByName(ctx context.Context, riotid RiotId, region string) (Summoner, error) {

	route := fmt.Sprintf(ROUTE_ACCOUNT_PUUID, url.PathEscape(riotid.GameName), url.PathEscape(riotid.TagLine))
	requestUrl := fmt.Sprintf(RIOT_SCHEMA, AccountRouting(region)) + route

	data, err := riotapi.request(ctx, requestUrl, riotapi.apiKey, true)
	if err != nil {
		return Summoner{}, notFoundAs(err, common.KIND_PLAYER_NOT_FOUND, "riot id %s does not exist", riotid)
	}
	canonical, puuid, err := DecodeAccount(data)
	if err != nil {
		return Summoner{}, err
	}

	summoner := Summoner{RiotId: canonical, Puuid: puuid, TFTPuuid: puuid}
	if riotapi.tftKey != riotapi.apiKey {
		data, err := riotapi.request(ctx, requestUrl, riotapi.tftKey, true)
		if err != nil {
			return Summoner{}, notFoundAs(err, common.KIND_PLAYER_NOT_FOUND, "riot id %s does not exist for TFT", riotid)
		}
		if _, summoner.TFTPuuid, err = DecodeAccount(data); err != nil {
			return Summoner{}, err
		}
	}
	log.Debug().Msg(fmt.Sprintf("Found puuids %s / %s for riot id %s", summoner.Puuid, summoner.TFTPuuid, canonical))

	riotapi.mu.Lock()
	riotapi.riotIds[puuid] = canonical
	riotapi.mu.Unlock()

	return summoner, nil
}

func (riotapi *RiotApi) GetAccountByPuuid(ctx context.Context, puuid Puuid, region string) (RiotId, error) {

	// Check cache
	riotapi.mu.Lock()
	riotid, ok := riotapi.riotIds[puuid]
	riotapi.mu.Unlock()
	if ok {
		return riotid, nil
	}
	log.Debug().Msg(fmt.Sprintf("Riot id for puuid %s is not in the cache", puuid))

	riotid, err := riotapi.fetchRiotId(ctx, puuid, region, true)
	if err != nil {
		return RiotId{}, err
	}

	// Update cache
	riotapi.mu.Lock()
	riotapi.riotIds[puuid] = riotid
	riotapi.mu.Unlock()
	return riotid, nil
}

// Most recent ranked League match ids, newest first.
// With flex tracking on, any ranked queue counts; otherwise only solo/duo
func (riotapi *RiotApi) GetLastRankedMatchIds(ctx context.Context, puuid Puuid, region string, wantFlex bool) ([]string, error) {

	query := url.Values{}
	query.Set("start", "0")
	query.Set("count", fmt.Sprint(MATCH_IDS_COUNT))
	if wantFlex {
		query.Set("type", "ranked")
	} else {
		query.Set("queue", fmt.Sprint(SOLO_QUEUE_ID))
	}
	requestUrl := fmt.Sprintf(RIOT_SCHEMA, Routing(region)) + fmt.Sprintf(ROUTE_MATCH_IDS, puuid) + "?" + query.Encode()

	data, err := riotapi.request(ctx, requestUrl, riotapi.apiKey, true)
	if err != nil {
		return nil, notFoundAs(err, common.KIND_LAST_MATCH_NOT_FOUND, "no match ids for puuid %s", puuid)
	}
	return DecodeMatchIds(data)
}

// Most recent TFT match ids of any queue, newest first
func (riotapi *RiotApi) GetLastTFTMatchIds(ctx context.Context, puuid Puuid, region string) ([]string, error) {

	requestUrl := fmt.Sprintf(RIOT_SCHEMA, Routing(region)) + fmt.Sprintf(ROUTE_TFT_MATCH_IDS, puuid) + fmt.Sprintf("?start=0&count=%d", MATCH_IDS_COUNT)

	data, err := riotapi.request(ctx, requestUrl, riotapi.tftKey, true)
	if err != nil {
		return nil, notFoundAs(err, common.KIND_LAST_MATCH_NOT_FOUND, "no TFT match ids for puuid %s", puuid)
	}
	return DecodeMatchIds(data)
}

func (riotapi *RiotApi) GetMatch(ctx context.Context, matchId string, region string) (Match, error) {

	requestUrl := fmt.Sprintf(RIOT_SCHEMA, Routing(region)) + fmt.Sprintf(ROUTE_MATCH, matchId)
	data, err := riotapi.request(ctx, requestUrl, riotapi.apiKey, true)
	if err != nil {
		return Match{}, notFoundAs(err, common.KIND_GAME_DETAIL_NOT_FOUND, "no detail for match %s", matchId)
	}
	return DecodeMatch(data)
}

func (riotapi *RiotApi) GetTFTMatch(ctx context.Context, matchId string, region string) (TFTMatch, error) {

	requestUrl := fmt.Sprintf(RIOT_SCHEMA, Routing(region)) + fmt.Sprintf(ROUTE_TFT_MATCH, matchId)
	data, err := riotapi.request(ctx, requestUrl, riotapi.tftKey, true)
	if err != nil {
		return TFTMatch{}, notFoundAs(err, common.KIND_GAME_DETAIL_NOT_FOUND, "no detail for TFT match %s", matchId)
	}
	return DecodeTFTMatch(data)
}

func (riotapi *RiotApi) GetLeagues(ctx context.Context, puuid Puuid, region string) ([]League, error) {

	requestUrl := fmt.Sprintf(RIOT_SCHEMA, region) + fmt.Sprintf(ROUTE_LEAGUE, puuid)
	data, err := riotapi.request(ctx, requestUrl, riotapi.apiKey, true)
	if err != nil {
		return nil, notFoundAs(err, common.KIND_PLAYER_RANK_INFO_NOT_FOUND, "no leagues found for puuid %s", puuid)
	}
	return DecodeLeagues(data)
}

func (riotapi *RiotApi) GetTFTLeagues(ctx context.Context, puuid Puuid, region string) ([]League, error) {

	requestUrl := fmt.Sprintf(RIOT_SCHEMA, region) + fmt.Sprintf(ROUTE_TFT_LEAGUE, puuid)
	data, err := riotapi.request(ctx, requestUrl, riotapi.tftKey, true)
	if err != nil {
		return nil, notFoundAs(err, common.KIND_PLAYER_RANK_INFO_NOT_FOUND, "no TFT leagues found for puuid %s", puuid)
	}
	return DecodeLeagues(data)
}

// Icon of the champion for the current patch. Empty until the patch is known
func (riotapi *RiotApi) ChampionIcon(championName string) string {
	riotapi.mu.Lock()
	version := riotapi.version
	riotapi.mu.Unlock()
	if version == "" || championName == "" {
		return ""
	}
	return fmt.Sprintf(ROUTE_CHAMPION_ICON, version, championName)
}

func Emblem(tier string) string {
	if tier == "" {
		return ""
	}
	return fmt.Sprintf(ROUTE_EMBLEM, strings.ToLower(tier))
}

func (riotapi *RiotApi) fetchRiotId(ctx context.Context, puuid Puuid, region string, vital bool) (RiotId, error) {

	requestUrl := fmt.Sprintf(RIOT_SCHEMA, AccountRouting(region)) + fmt.Sprintf(ROUTE_ACCOUNT_RIOT_ID, puuid)
	data, err := riotapi.request(ctx, requestUrl, riotapi.apiKey, vital)
	if err != nil {
		return RiotId{}, notFoundAs(err, common.KIND_PLAYER_NOT_FOUND, "could not find riot id for puuid %s", puuid)
	}
	riotid, _, err := DecodeAccount(data)
	if err != nil {
		return RiotId{}, err
	}
	log.Debug().Msg(fmt.Sprintf("Found riot id %s for puuid %s", riotid, puuid))
	return riotid, nil
}

func (riotapi *RiotApi) request(ctx context.Context, url string, key string, vital bool) ([]byte, error) {

	log.Debug().Msg(fmt.Sprintf("Requesting to url %s", url))
	header := map[string]string{}
	if strings.Contains(url, "api.riotgames.com") {
		header["X-Riot-Token"] = key
	}
	return riotapi.proxy.Request(ctx, url, header, vital)
}

// Refresh the riot ids of the provided puuids (players rename themselves)
// and the patch version used for icons. Housekeeping requests are not vital,
// so they give way to polling when the budget is tight.
// Returns the riot ids that changed
func (riotapi *RiotApi) Housekeeping(ctx context.Context, puuidsToKeep map[Puuid]string) map[Puuid]RiotId {

	// Check patch version
	if err := riotapi.checkPatchVersion(ctx); err != nil {
		log.Info().Msg(fmt.Sprintf("Could not check patch version: %v", err))
	}

	riotapi.mu.Lock()
	log.Info().Msg(fmt.Sprintf("Current number of riot ids: %d", len(riotapi.riotIds)))
	log.Info().Msg(fmt.Sprintf("Keeping %d puuids", len(puuidsToKeep)))
	previous := riotapi.riotIds
	riotapi.riotIds = make(map[Puuid]RiotId, len(puuidsToKeep))
	riotapi.mu.Unlock()

	// Purge my memory first
	// - remove all the riot ids
	// - add the riot ids that we need to keep, with the latest values provided by riot
	changed := map[Puuid]RiotId{}
	for puuid, region := range puuidsToKeep {

		// Get a new riot id and add to the map
		riotid, err := riotapi.fetchRiotId(ctx, puuid, region, false)
		if err != nil {
			if errors.Is(err, common.ErrRequestRejected) {
				log.Info().Msg("Housekeeping stopped early, the rate limiter is busy")
				break
			}
			log.Error().Err(err).Msg(fmt.Sprintf("Could not refresh riot id of puuid %s", puuid))
			continue
		}

		if old, ok := previous[puuid]; ok && old != riotid {
			log.Info().Msg(fmt.Sprintf("Player %s is now known as %s", old, riotid))
			changed[puuid] = riotid
		} else if !ok {
			changed[puuid] = riotid
		}

		riotapi.mu.Lock()
		riotapi.riotIds[puuid] = riotid
		riotapi.mu.Unlock()
	}

	return changed
}

// Fetches the latest version of the data dragon available, and checks the version
// is up in EUW.
// If the internal data is on an old version, icons switch to the new one
func (riotapi *RiotApi) checkPatchVersion(ctx context.Context) error {

	// Check the versions.json file for the latest version
	data, err := riotapi.request(ctx, VERSIONS_JSON, "", false)
	if err != nil {
		return fmt.Errorf("could not request file %s: %w", VERSIONS_JSON, err)
	}
	// unmarshal
	var versions []string
	if json.Unmarshal(data, &versions) != nil || len(versions) == 0 {
		return fmt.Errorf("%s file does not have the expected content", VERSIONS_JSON)
	}
	latestVersion := versions[0]
	log.Info().Msg(fmt.Sprintf("Latest patch available in dd is %s", latestVersion))

	// Check which version the EUW is sitting on
	data, err = riotapi.request(ctx, REALM, "", false)
	if err != nil {
		return fmt.Errorf("could not request file %s: %w", REALM, err)
	}
	// unmarshal
	var realmsEuw struct{ Dd string }
	if json.Unmarshal(data, &realmsEuw) != nil {
		return fmt.Errorf("%s file does not have the expected content", REALM)
	}
	realmVersion := realmsEuw.Dd
	log.Info().Msg(fmt.Sprintf("Realm patch version for EUW is %s", realmVersion))

	// The EUW version should at least exist among the overall versions
	if !slices.Contains(versions, realmVersion) {
		return fmt.Errorf("EUW realm version %s was not found among the dd version", realmVersion)
	}

	riotapi.mu.Lock()
	defer riotapi.mu.Unlock()
	if riotapi.version != realmVersion {
		log.Info().Msg(fmt.Sprintf("Internal version (%s) is not in line with new version (%s)", riotapi.version, realmVersion))
		riotapi.version = realmVersion
	} else {
		log.Info().Msg("Internal version is in line with the new version. Nothing to do")
	}

	return nil
}

// A 404 from riot becomes the typed failure the callers branch on
func notFoundAs(err error, kind common.Kind, format string, args ...any) error {
	if errors.Is(err, common.ErrDataNotFound) {
		return common.WrapError(kind, err, format, args...)
	}
	return err
}
