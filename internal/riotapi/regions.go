package riotapi

import "strings"

// Platforms grouped by the regional cluster that serves match and account data
var routing = map[string]string{
	"br1":  "americas",
	"la1":  "americas",
	"la2":  "americas",
	"na1":  "americas",
	"euw1": "europe",
	"eun1": "europe",
	"tr1":  "europe",
	"ru":   "europe",
	"me1":  "europe",
	"kr":   "asia",
	"jp1":  "asia",
	"oc1":  "sea",
	"ph2":  "sea",
	"sg2":  "sea",
	"th2":  "sea",
	"tw2":  "sea",
	"vn2":  "sea",
}

// Friendly names people type in discord
var aliases = map[string]string{
	"br":   "br1",
	"lan":  "la1",
	"las":  "la2",
	"na":   "na1",
	"euw":  "euw1",
	"eune": "eun1",
	"tr":   "tr1",
	"me":   "me1",
	"jp":   "jp1",
	"oce":  "oc1",
	"ph":   "ph2",
	"sg":   "sg2",
	"th":   "th2",
	"tw":   "tw2",
	"vn":   "vn2",
}

// Normalise user input into a platform id, reporting if it is known
func ParseRegion(input string) (string, bool) {
	region := strings.ToLower(strings.TrimSpace(input))
	if alias, ok := aliases[region]; ok {
		region = alias
	}
	_, ok := routing[region]
	return region, ok
}

// Regional cluster for match data
func Routing(platform string) string {
	if cluster, ok := routing[platform]; ok {
		return cluster
	}
	return "europe"
}

// Account data has no sea cluster
func AccountRouting(platform string) string {
	cluster := Routing(platform)
	if cluster == "sea" {
		return "asia"
	}
	return cluster
}
