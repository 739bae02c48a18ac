package seed

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"tunebook/pkg/logger"
	"tunebook/pkg/models"
	"tunebook/pkg/store"
)

//go:embed tune_db.json
var embedded embed.FS

// SeedUsername is recorded as the contributing username on seeded tunes.
const SeedUsername = "Tunebook"

// Load populates the tune map from the seed dataset, a flat JSON object of
// title to ABC body. It is a strict no-op when the tune namespace already
// holds records: seed updates never propagate after first boot, and
// re-seeding requires clearing the store out-of-band. Returns the number of
// tunes inserted.
func Load(st *store.Store, path string) (int, error) {
	empty, err := st.IsEmpty(store.NSTune)
	if err != nil {
		return 0, err
	}
	if !empty {
		logger.Info("seed_skipped_nonempty")
		return 0, nil
	}

	data, err := readDataset(path)
	if err != nil {
		return 0, err
	}

	var tunes map[string]string
	if err := json.Unmarshal(data, &tunes); err != nil {
		return 0, fmt.Errorf("seed dataset is not a flat title->body object: %w", err)
	}

	now := time.Now().UTC().UnixNano()
	uname := SeedUsername
	count := 0
	for title, body := range tunes {
		t := models.Tune{
			Origin:     true,
			Title:      title,
			TuneData:   body,
			Timestamp:  now,
			Principals: []string{},
			Username:   &uname,
		}
		b, err := json.Marshal(t)
		if err != nil {
			return count, fmt.Errorf("failed to marshal seed tune %q: %w", title, err)
		}
		if err := st.Put(store.NSTune, title, b); err != nil {
			return count, err
		}
		count++
	}
	logger.Info("seed_loaded", "count", count)
	return count, nil
}

// readDataset returns the override file when a path is configured,
// otherwise the embedded dataset.
func readDataset(path string) ([]byte, error) {
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed dataset %s: %w", path, err)
		}
		return b, nil
	}
	return embedded.ReadFile("tune_db.json")
}
