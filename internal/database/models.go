package database

import "time"

// Content is the externally owned media entity the tag graph annotates.
// Only ID, Hidden and AdditionDate matter to tag queries.
type Content struct {
	ID           int64     `json:"id"`
	FilePath     string    `json:"filePath"`
	Title        string    `json:"title,omitempty"`
	ContentType  string    `json:"contentType"`
	Description  string    `json:"description,omitempty"`
	AdditionDate time.Time `json:"additionDate"`
	Hidden       bool      `json:"hidden"`
}

// GraphStats summarizes the size of the tag graph.
type GraphStats struct {
	TotalTags    int `json:"totalTags"`
	TotalAliases int `json:"totalAliases"`
	TotalLinks   int `json:"totalLinks"`
	TotalContent int `json:"totalContent"`
}
