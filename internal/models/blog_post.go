package models

import "time"

// BlogPost is a published article. Author is free text, not a reference to a User.
type BlogPost struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	Subtitle   string    `json:"subtitle"`
	Author     string    `json:"author"`
	Content    string    `json:"content"`
	DatePosted time.Time `json:"date_posted"`
}

// PostSummary is the list form of a post used by the JSON API and the live feed.
type PostSummary struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	Subtitle   string    `json:"subtitle"`
	Author     string    `json:"author"`
	Excerpt    string    `json:"excerpt"`
	DatePosted time.Time `json:"date_posted"`
}
