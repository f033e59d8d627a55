package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/stemsi/exstem-mobile-core/internal/config"
	"github.com/stemsi/exstem-mobile-core/internal/database"
	"github.com/stemsi/exstem-mobile-core/internal/logger"
	"github.com/stemsi/exstem-mobile-core/pkg/anticheat"
	"github.com/stemsi/exstem-mobile-core/pkg/store"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	studentID := flag.String("student", "", "student ID")
	testType := flag.String("test-type", "", "test type (normalized for the key)")
	testID := flag.String("test", "", "test ID")
	list := flag.Bool("list", false, "list all persisted cheating records")
	clear := flag.Bool("clear", false, "remove the record for the given identity")
	flag.Parse()

	ctx := context.Background()

	// ─── Open Store ────────────────────────────────────────────────────
	st, err := database.NewStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("Failed to open store")
	}

	if *list {
		if err := listRecords(ctx, st); err != nil {
			log.Fatal().Err(err).Msg("Failed to list records")
		}
		return
	}

	if *studentID == "" || *testType == "" || *testID == "" {
		fmt.Fprintln(os.Stderr, "need -student, -test-type and -test (or -list)")
		flag.Usage()
		os.Exit(2)
	}

	id := anticheat.Identity{StudentID: *studentID, TestType: *testType, TestID: *testID}
	key := anticheat.RecordKey(id)

	if *clear {
		if err := st.Remove(ctx, key); err != nil {
			log.Fatal().Err(err).Str("key", key).Msg("Failed to remove record")
		}
		fmt.Printf("removed %s\n", key)
		return
	}

	raw, err := st.Get(ctx, key)
	if err == store.ErrNotFound {
		fmt.Printf("no record for %s\n", key)
		return
	}
	if err != nil {
		log.Fatal().Err(err).Str("key", key).Msg("Failed to read record")
	}
	printRecord(key, raw)
}

func listRecords(ctx context.Context, st store.Store) error {
	keys, err := st.Keys(ctx)
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}

	found := 0
	for _, key := range keys {
		if !strings.HasPrefix(key, anticheat.KeyPrefix) {
			continue
		}
		raw, err := st.Get(ctx, key)
		if err != nil {
			continue // Key may have been removed between scan and read
		}
		printRecord(key, raw)
		found++
	}
	if found == 0 {
		fmt.Println("no cheating records")
	}
	return nil
}

// printRecord pretty-prints a record, falling back to the raw value for
// legacy shapes.
func printRecord(key, raw string) {
	var pretty map[string]any
	if err := json.Unmarshal([]byte(raw), &pretty); err != nil {
		fmt.Printf("%s\t%s (unparseable)\n", key, raw)
		return
	}
	encoded, _ := json.Marshal(pretty)
	fmt.Printf("%s\t%s\n", key, encoded)
}
