// Package types contains common enum types used across the application.
package types

import "strings"

// League identifies the competition a canonical team belongs to.
type League string

// Known leagues. LeagueUnknown marks rows whose league could not be
// established; such rows never survive validation.
const (
	LeagueNFL     League = "NFL"
	LeagueNCAAF   League = "NCAAF"
	LeagueNBA     League = "NBA"
	LeagueNCAAB   League = "NCAAB"
	LeagueMLB     League = "MLB"
	LeagueNHL     League = "NHL"
	LeagueWNBA    League = "WNBA"
	LeagueMLS     League = "MLS"
	LeagueUFC     League = "UFC"
	LeagueUnknown League = "Unknown"
)

var knownLeagues = map[League]struct{}{
	LeagueNFL:   {},
	LeagueNCAAF: {},
	LeagueNBA:   {},
	LeagueNCAAB: {},
	LeagueMLB:   {},
	LeagueNHL:   {},
	LeagueWNBA:  {},
	LeagueMLS:   {},
	LeagueUFC:   {},
}

// ParseLeague folds a raw league string to a known League.
// Unrecognized values map to LeagueUnknown.
func ParseLeague(s string) League {
	lg := League(strings.ToUpper(strings.TrimSpace(s)))
	switch lg {
	case "UFC/MMA", "MMA":
		return LeagueUFC
	case "CFB":
		return LeagueNCAAF
	}
	if _, ok := knownLeagues[lg]; ok {
		return lg
	}
	return LeagueUnknown
}

// Known reports whether lg is a real league (not LeagueUnknown).
func (lg League) Known() bool {
	_, ok := knownLeagues[lg]
	return ok
}

// Market identifies the bet type an observation refers to.
type Market string

// Markets carried on observations. Alias folding happens in ParseMarket.
const (
	MarketML      Market = "ML"
	MarketSpread  Market = "Spread"
	MarketTotal   Market = "Total"
	MarketUnknown Market = "Unknown"
)

// ParseMarket normalizes the many raw market spellings seen in source
// data ("Moneyline", "Money Line", "O/U", "OU", ...) to a Market.
func ParseMarket(s string) Market {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ML", "MONEYLINE", "MONEY LINE":
		return MarketML
	case "SPREAD", "RL", "RUN LINE", "RUNLINE", "PL", "PUCK LINE":
		return MarketSpread
	case "TOTAL", "O/U", "OU", "OVER/UNDER":
		return MarketTotal
	}
	return MarketUnknown
}

// Known reports whether m is a concrete market (not MarketUnknown).
func (m Market) Known() bool {
	return m == MarketML || m == MarketSpread || m == MarketTotal
}

// Strength is the keyword-graded tier of a text signal.
type Strength string

// Signal strength tiers. Grading is first-match-wins, HIGH before MED;
// everything else is LOW.
const (
	StrengthHigh Strength = "HIGH"
	StrengthMed  Strength = "MED"
	StrengthLow  Strength = "LOW"
)

// Strength weights used when aggregating signals per team.
const (
	weightHigh = 2.0
	weightMed  = 1.0
	weightLow  = 0.25
)

// ParseStrength folds a raw strength string to a tier, defaulting to LOW.
func ParseStrength(s string) Strength {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return StrengthHigh
	case "MED", "MEDIUM":
		return StrengthMed
	}
	return StrengthLow
}

// Weight returns the numeric scoring weight for the tier.
func (s Strength) Weight() float64 {
	switch s {
	case StrengthHigh:
		return weightHigh
	case StrengthMed:
		return weightMed
	default:
		return weightLow
	}
}
