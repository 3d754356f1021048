package economy

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"CupidGems/internal/model"
	"CupidGems/internal/store"
)

// GemsKey is the storage key of the economy record.
const GemsKey = "gemsData"

// errRepaired marks a loaded record that needed a field reset.
var errRepaired = errors.New("inconsistent record repaired")

//go:embed schemas/gemsdata.schema.json
var gemsSchemaJSON string

var gemsSchema = jsonschema.MustCompileString("gemsdata.schema.json", gemsSchemaJSON)

// ValidateRecord checks raw gemsData bytes against the record schema.
func ValidateRecord(raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return gemsSchema.Validate(v)
}

func newGemsDocument(s store.Store, onCorrupt func(string, error)) *store.Document[model.GemsRecord] {
	doc := store.NewDocument(s, GemsKey, func() model.GemsRecord {
		return toRecord(model.DefaultEconomyState())
	})
	doc.Validate = ValidateRecord
	doc.OnCorrupt = onCorrupt
	return doc
}

func toRecord(st model.EconomyState) model.GemsRecord {
	rec := model.GemsRecord{
		Gems:             st.Balance,
		UnlockedProfiles: st.UnlockedIDs(),
		Streak:           st.Streak,
	}
	if st.LastClaimDate != "" {
		d := st.LastClaimDate
		rec.LastClaimDate = &d
	}
	if !st.BoostEndTime.IsZero() {
		ms := st.BoostEndTime.UnixMilli()
		rec.BoostEndTime = &ms
	}
	return rec
}

// fromRecord converts a decoded record, repairing fields that contradict
// each other. Every repair is passed to report.
func fromRecord(rec model.GemsRecord, report func(key string, err error)) model.EconomyState {
	st := model.DefaultEconomyState()
	st.Balance = rec.Gems
	st.Streak = rec.Streak
	for _, id := range rec.UnlockedProfiles {
		if id != "" {
			st.Unlocked[id] = struct{}{}
		}
	}
	if rec.LastClaimDate != nil {
		if d, ok := normalizeDate(*rec.LastClaimDate); ok {
			st.LastClaimDate = d
		} else {
			report(GemsKey, fmt.Errorf("%w: lastClaimDate %q", errRepaired, *rec.LastClaimDate))
		}
	}
	if rec.BoostEndTime != nil {
		st.BoostEndTime = time.UnixMilli(*rec.BoostEndTime)
	}

	switch {
	case st.LastClaimDate != "" && st.Streak == 0:
		report(GemsKey, fmt.Errorf("%w: streak 0 with a claim on %s", errRepaired, st.LastClaimDate))
		st.Streak = 1
	case st.LastClaimDate == "" && st.Streak != 0:
		report(GemsKey, fmt.Errorf("%w: streak %d without a claim date", errRepaired, st.Streak))
		st.Streak = 0
	}
	return st
}
