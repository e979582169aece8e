package jsonfile

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/its-jojoo/otterkeep/internal/core"
)

// v2 files were written by the earlier editor extension: items live under
// "fileTexts", the quick-bookmark label is "param", timestamps are epoch
// milliseconds and the location is "createdLocation".
type documentV2 struct {
	Version   int        `json:"version"`
	FileTexts []recordV2 `json:"fileTexts"`
}

type recordV2 struct {
	Value           string          `json:"value"`
	Param           string          `json:"param"`
	AddCount        int             `json:"addCount"`
	UpdateCount     int             `json:"updateCount"`
	Language        string          `json:"language"`
	CreatedAt       json.RawMessage `json:"createdAt"`
	UpdatedAt       json.RawMessage `json:"updatedAt"`
	CreatedLocation *core.Location  `json:"createdLocation"`
	ExtraParam      string          `json:"extraParam"`
}

func migrateV2(data []byte) ([]core.Item, error) {
	var doc documentV2
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: v2: %v", core.ErrMalformedStore, err)
	}

	items := make([]core.Item, 0, len(doc.FileTexts))
	for _, r := range doc.FileTexts {
		it := core.Item{
			Value:       r.Value,
			Key:         r.Param,
			AddCount:    r.AddCount,
			UpdateCount: r.UpdateCount,
			Language:    r.Language,
			CreatedAt:   legacyTime(r.CreatedAt),
			UpdatedAt:   legacyTime(r.UpdatedAt),
			Location:    r.CreatedLocation,
		}
		if r.ExtraParam == string(core.DriftNotFound) {
			it.Drift = core.DriftNotFound
		}
		items = append(items, repair(it))
	}
	return items, nil
}

// legacyTime accepts epoch milliseconds, or a string in TimeLayout.
func legacyTime(raw json.RawMessage) time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}
	}
	if ms, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
		return time.UnixMilli(ms)
	}
	if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
		return time.UnixMilli(int64(f))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseTime(s)
	}
	return time.Time{}
}
