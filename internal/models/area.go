// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "strings"

// HTMLArea is a named block of rich markup inside a content group.
type HTMLArea struct {
	Name string `json:"name"`
	HTML string `json:"html"`
}

// ImageArea is a named image reference with optional alt text. The image may
// be the empty marker, which keeps the area (and its alt text) alive after
// the editor cleared the upload.
type ImageArea struct {
	Name    string  `json:"name"`
	Image   Image   `json:"image"`
	AltText *string `json:"alt_text,omitempty"`
}

// AltTextOrEmpty returns the alt text, or "" when none was stored.
func (a ImageArea) AltTextOrEmpty() string {
	if a.AltText == nil {
		return ""
	}
	return *a.AltText
}

// TextArea is a named plain text value.
type TextArea struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Metadata is a key/value pair rendered into the document head.
type Metadata struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Image references a stored file. Path is the storage location on disk,
// ClientFileName is the name the file had when it was uploaded.
type Image struct {
	Path           string `json:"path"`
	ClientFileName string `json:"client_file_name"`
	Valid          bool   `json:"valid"`
}

// NewImage returns an image for a stored file. An image without a path is
// never valid.
func NewImage(path, clientFileName string) Image {
	return Image{Path: path, ClientFileName: clientFileName, Valid: path != ""}
}

// EmptyImage returns the marker used for image areas that hold no file.
func EmptyImage() Image {
	return Image{}
}

// Dir returns the directory prefix of the path including the trailing
// separator, or "" when the path has none.
func (i Image) Dir() string {
	if idx := strings.LastIndexAny(i.Path, `/\`); idx >= 0 {
		return i.Path[:idx+1]
	}
	return ""
}

// FileName returns the last path segment.
func (i Image) FileName() string {
	return i.Path[len(i.Dir()):]
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
