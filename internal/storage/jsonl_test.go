package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"nthExchange/internal/model"
)

func TestJsonlHistoryAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "history.jsonl")
	log := NewJsonlHistory(path)

	records := []model.SwapRecord{
		{
			Kind:         model.KindBuy,
			User:         "user-1",
			InputAsset:   model.AssetAVAX,
			InputAmount:  decimal.NewFromInt(100),
			OutputAsset:  model.AssetNTH,
			OutputAmount: decimal.NewFromInt(1955),
			Fee:          decimal.NewFromFloat(0.3),
			Timestamp:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
			Reference:    "ref-1",
		},
		{
			Kind:        model.KindSell,
			User:        "user-2",
			InputAsset:  model.AssetNTH,
			InputAmount: decimal.NewFromInt(500),
			OutputAsset: model.AssetETH,
			Timestamp:   time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC),
			Reference:   "ref-2",
		},
	}

	if err := log.Append(records[:1]); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := log.Append(records[1:]); err != nil {
		t.Fatalf("second append: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var decoded []model.SwapRecord
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record model.SwapRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("unmarshal line: %v", err)
		}
		decoded = append(decoded, record)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if len(decoded) != 2 {
		t.Fatalf("line count %d, want 2", len(decoded))
	}
	if decoded[0].Reference != "ref-1" || decoded[1].Reference != "ref-2" {
		t.Fatalf("references mismatch: %s, %s", decoded[0].Reference, decoded[1].Reference)
	}
	if decoded[0].InputAsset != model.AssetAVAX {
		t.Fatalf("asset mismatch: %s", decoded[0].InputAsset)
	}
	if !decoded[0].InputAmount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("amount mismatch: %s", decoded[0].InputAmount)
	}
}

func TestJsonlHistoryEmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	log := NewJsonlHistory(path)

	if err := log.Append(nil); err != nil {
		t.Fatalf("empty append: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("empty append must not create the file")
	}
}

func TestFanoutJoinsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	fanout := Fanout{NewJsonlHistory(path), NewJsonlHistory(path)}

	record := model.SwapRecord{Kind: model.KindBuy, InputAsset: model.AssetAVAX, OutputAsset: model.AssetNTH, Reference: "ref-1"}
	if err := fanout.Append([]model.SwapRecord{record}); err != nil {
		t.Fatalf("fanout append: %v", err)
	}

	file, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := 0
	for _, b := range file {
		if b == '\n' {
			lines++
		}
	}
	if lines != 2 {
		t.Fatalf("fanout wrote %d lines, want 2", lines)
	}
}
