package model

// BoardRecord is a report as persisted by the browser board: one JSON
// object per report, without kind or timestamps.
type BoardRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Desc     string `json:"desc"`
	Date     string `json:"date"`
	Location string `json:"location"`
}

// Board is the full export of both collections, keyed the way the browser
// board stored them.
type Board struct {
	LostItems  []BoardRecord `json:"lostItems"`
	FoundItems []BoardRecord `json:"foundItems"`
}

// ImportResult summarizes an import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ToRecord strips an item down to its board representation.
func (it Item) ToRecord() BoardRecord {
	return BoardRecord{
		ID:       it.ID,
		Name:     it.Name,
		Desc:     it.Description,
		Date:     it.Date,
		Location: it.Location,
	}
}
