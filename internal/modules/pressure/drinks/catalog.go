// Package drinks scores a user's preferred drinks against the day's pressure
// volatility.
package drinks

import (
	"sort"
	"strings"
)

// Key identifies one beverage kind in the closed catalog.
type Key string

const (
	Beer       Key = "beer"
	Sake       Key = "sake"
	Wine       Key = "wine"
	Shochu     Key = "shochu"
	Highball   Key = "highball"
	Whisky     Key = "whisky"
	Umeshu     Key = "umeshu"
	NonAlcohol Key = "non-alcohol"
)

// Profile is a static catalog entry.
type Profile struct {
	Key         Key    `json:"key"`
	DisplayName string `json:"displayName"`
	Icon        string `json:"icon"`
	BaseRisk    int    `json:"baseRisk"`
}

var catalog = map[Key]Profile{
	Beer:       {Key: Beer, DisplayName: "ビール", Icon: "🍺", BaseRisk: 3},
	Sake:       {Key: Sake, DisplayName: "日本酒", Icon: "🍶", BaseRisk: 2},
	Wine:       {Key: Wine, DisplayName: "ワイン", Icon: "🍷", BaseRisk: 2},
	Shochu:     {Key: Shochu, DisplayName: "焼酎", Icon: "🥃", BaseRisk: 1},
	Highball:   {Key: Highball, DisplayName: "ハイボール", Icon: "🥂", BaseRisk: 1},
	Whisky:     {Key: Whisky, DisplayName: "ウイスキー", Icon: "🥃", BaseRisk: 2},
	Umeshu:     {Key: Umeshu, DisplayName: "梅酒", Icon: "🍸", BaseRisk: 1},
	NonAlcohol: {Key: NonAlcohol, DisplayName: "ノンアルコール", Icon: "🧃", BaseRisk: 0},
}

// Lookup returns the profile for k. Unknown keys report false; that is a
// normal outcome, not an error.
func Lookup(k Key) (Profile, bool) {
	p, ok := catalog[k]
	return p, ok
}

// ParseKey normalizes user input ("Beer ", "beer") to a catalog key.
func ParseKey(s string) (Key, bool) {
	k := Key(strings.ToLower(strings.TrimSpace(s)))
	_, ok := catalog[k]
	return k, ok
}

// Catalog lists every profile ordered by key.
func Catalog() []Profile {
	out := make([]Profile, 0, len(catalog))
	for _, p := range catalog {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
