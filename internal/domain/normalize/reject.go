package normalize

// Reason classifies why a record was rejected.
type Reason string

// Reject reasons, written to the flagged side-channel.
const (
	ReasonLeague     Reason = "league"
	ReasonMarket     Reason = "market"
	ReasonNoTeams    Reason = "no_teams"
	ReasonBadTeam    Reason = "bad_team"
	ReasonGibberish  Reason = "gibberish"
	ReasonUnresolved Reason = "resolve"
	ReasonSameTeam   Reason = "same_team"
	ReasonPctRange   Reason = "pct_range"
	ReasonLineRange  Reason = "line_range"
	ReasonWeak       Reason = "weak"
	ReasonNoPair     Reason = "no_pair"
)

// Reject is one dropped record plus the reason, kept for human audit.
type Reject struct {
	Row    RawRow
	Text   string // source text for tweet rejects
	Reason Reason
}

func rejectRow(row RawRow, reason Reason) *Reject {
	return &Reject{Row: row, Reason: reason}
}

func rejectText(text string, reason Reason) *Reject {
	return &Reject{Text: text, Reason: reason}
}
