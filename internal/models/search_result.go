package models

import "fmt"

type SearchResult struct {
	BookName  string `json:"book_name"`
	BookID    string `json:"book_id"`
	Chapter   int    `json:"chapter"`
	Verse     int    `json:"verse"`
	Reference string `json:"reference"`
	Text      string `json:"text"`
	Score     int    `json:"score"`
}

func Reference(bookName string, chapter, verse int) string {
	return fmt.Sprintf("%s %d:%d", bookName, chapter, verse)
}
