package models

import (
	"time"
)

// Document represents an indexed document stored in MongoDB.
// Raw content is owned by the storage layer; the engine only reads it.
type Document struct {
	ID         string    `bson:"_id" json:"id"`
	Title      string    `bson:"title" json:"title"`
	Author     string    `bson:"author,omitempty" json:"author,omitempty"`
	Content    string    `bson:"content" json:"content"`
	TokenCount int       `bson:"tokenCount" json:"tokenCount"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// Term is a unique normalized token tracked corpus-wide.
// DocFreq counts the distinct documents containing the term.
type Term struct {
	Text    string `bson:"_id" json:"text"`
	DocFreq int    `bson:"docFreq" json:"docFreq"`
}

// Posting links a term to a document with the term's raw frequency
// in that document. (Term, DocumentID) is unique.
type Posting struct {
	Term       string `bson:"term" json:"term"`
	DocumentID string `bson:"documentId" json:"documentId"`
	TermFreq   int    `bson:"termFreq" json:"termFreq"`
}
