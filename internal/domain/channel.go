// Package domain contém os registros lidos dos CSVs e as métricas de marketing derivadas deles
package domain

import "sort"

type Channel string

const (
	GoogleAds     Channel = "Google Ads"
	YouTubeAds    Channel = "YouTube Ads"
	FacebookAds   Channel = "FB Ads"
	OrganicDirect Channel = "Organic + Direct"
)

var channelOrder = map[Channel]int{
	GoogleAds:     0,
	YouTubeAds:    1,
	FacebookAds:   2,
	OrganicDirect: 3,
}

// IsPaid indica canais com investimento em mídia
func (c Channel) IsPaid() bool {
	return c != OrganicDirect
}

// IsAwareness indica canais de topo de funil (YouTube e Facebook)
func (c Channel) IsAwareness() bool {
	return c == YouTubeAds || c == FacebookAds
}

// IsConversion indica canais de fundo de funil (Google e orgânico)
func (c Channel) IsConversion() bool {
	return c == GoogleAds || c == OrganicDirect
}

func (c Channel) String() string {
	return string(c)
}

// SortChannels ordena canais conhecidos na ordem padrão e os demais alfabeticamente
func SortChannels(channels []Channel) {
	sort.SliceStable(channels, func(i, j int) bool {
		oi, iKnown := channelOrder[channels[i]]
		oj, jKnown := channelOrder[channels[j]]
		switch {
		case iKnown && jKnown:
			return oi < oj
		case iKnown != jKnown:
			return iKnown
		default:
			return channels[i] < channels[j]
		}
	})
}

type CustomerType string

const (
	NewMembers           CustomerType = "1. New Members"
	MemberUpgrades       CustomerType = "2. Member Upgrades"
	SubscriptionRenewals CustomerType = "3. Subscription Renewals"
)
