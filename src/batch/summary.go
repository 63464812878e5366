// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// Summary counts outcomes across result files.
type Summary struct {
	Files    int
	Rows     int
	Outcomes map[string]int
}

// Summarize reads every evaluation-result_part*.csv in dir.
func Summarize(dir string) (*Summary, error) {
	files, err := filepath.Glob(filepath.Join(dir, "evaluation-result_part*.csv"))
	if err != nil {
		return nil, err
	}

	s := &Summary{Outcomes: make(map[string]int)}
	for _, name := range files {
		if err := s.add(name); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		s.Files++
	}
	return s, nil
}

func (s *Summary) add(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(record) < 3 {
			continue
		}
		s.Rows++
		s.Outcomes[record[2]]++
	}
}

// Sorted returns the outcomes ordered by descending count, then name.
func (s *Summary) Sorted() []string {
	keys := make([]string, 0, len(s.Outcomes))
	for k := range s.Outcomes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if s.Outcomes[keys[i]] != s.Outcomes[keys[j]] {
			return s.Outcomes[keys[i]] > s.Outcomes[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}

// RenderTable renders the counts as a markdown table.
func (s *Summary) RenderTable() string {
	var buf strings.Builder
	table := tablewriter.NewTable(&buf,
		tablewriter.WithRenderer(renderer.NewMarkdown(tw.Rendition{Streaming: true})),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)

	table.Header([]string{"Outcome", "Rows", "Share"})

	var rows [][]string
	for _, k := range s.Sorted() {
		share := 0.0
		if s.Rows > 0 {
			share = float64(s.Outcomes[k]) / float64(s.Rows) * 100
		}
		rows = append(rows, []string{k, fmt.Sprint(s.Outcomes[k]), fmt.Sprintf("%.1f%%", share)})
	}

	table.Bulk(rows)
	table.Render()
	return buf.String()
}
