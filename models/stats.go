package models

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

type Distribution map[Category]int

type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// Ordered returns the observed categories from lowest to highest band.
func (d Distribution) Ordered() []CategoryCount {
	out := make([]CategoryCount, 0, len(d))
	for _, c := range Categories {
		if n, ok := d[c]; ok {
			out = append(out, CategoryCount{Category: c, Count: n})
		}
	}
	return out
}

// MarshalJSON writes the observed categories in band order so the stats
// payload lists them the way the dashboard shows them. Unknown labels follow,
// sorted.
func (d Distribution) MarshalJSON() ([]byte, error) {
	var extra []string
	for c := range d {
		if !c.Known() {
			extra = append(extra, string(c))
		}
	}
	sort.Strings(extra)

	entries := d.Ordered()
	for _, c := range extra {
		entries = append(entries, CategoryCount{Category: Category(c), Count: d[Category(c)]})
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(e.Category))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(e.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Total sums every category count.
func (d Distribution) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

type Stats struct {
	TotalReadings        int          `json:"total_readings"`
	AverageGlucose       float64      `json:"average_glucose"`
	CategoryDistribution Distribution `json:"category_distribution"`
}
