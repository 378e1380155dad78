package model

// Project is one imported content item — a GitHub repository or a Notion page.
//
// (StudentID, Title) is the natural key: re-importing the same item updates the
// existing row instead of creating a new one. Content is capped at 2000
// characters by the importer before it ever reaches the store.
//
// Skills is a small platform-specific tag map, e.g. {"language": "Go"} for a
// repository or {"source": "Notion"} for a page. It is persisted as JSON text.
type Project struct {
	ID             int64             `json:"id"`
	StudentID      int64             `json:"student_id"`
	Title          string            `json:"title"`
	Content        string            `json:"content"`
	Skills         map[string]string `json:"skills"`
	Context        string            `json:"context"`
	Type           string            `json:"type"`
	SourcePlatform string            `json:"source_platform"`
}
