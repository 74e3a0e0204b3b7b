// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"errors"
	"fmt"
)

// ErrIncompleteConfig is returned when the content config is finalized
// before the image storage path and its public URL were defined.
var ErrIncompleteConfig = errors.New("incomplete content config definition")

// Content is the storage configuration consumed by the content services.
type Content struct {
	ImageStorageBasePath string
	ImageBaseURL         string
	FileStorageBasePath  string
}

// Validate checks that the image locations are set.
func (c Content) Validate() error {
	if c.ImageStorageBasePath == "" {
		return fmt.Errorf("%w: image storage path is not set", ErrIncompleteConfig)
	}
	if c.ImageBaseURL == "" {
		return fmt.Errorf("%w: image base url is not set", ErrIncompleteConfig)
	}
	return nil
}

// ContentDefinition collects the content config before it is frozen with
// Finalize:
//
//	cfg, err := config.NewContentDefinition().
//		StoreImagesUnder("/var/www/images").
//		MappedToURL("https://cdn.example.com/images").
//		Finalize()
type ContentDefinition struct {
	imagePath string
	imageURL  string
	filePath  string
	imagesSet bool
}

// NewContentDefinition returns an empty definition.
func NewContentDefinition() *ContentDefinition {
	return &ContentDefinition{}
}

// StoreImagesUnder sets the directory uploaded images are stored in. It
// must be followed by MappedToURL.
func (d *ContentDefinition) StoreImagesUnder(path string) *ImageURLDefiner {
	return &ImageURLDefiner{def: d, path: path}
}

// StoreFilesUnder sets the directory generic uploads are stored in.
func (d *ContentDefinition) StoreFilesUnder(path string) *ContentDefinition {
	d.filePath = path
	return d
}

// Finalize returns the completed config.
func (d *ContentDefinition) Finalize() (Content, error) {
	if !d.imagesSet {
		return Content{}, fmt.Errorf("%w: StoreImagesUnder must be called", ErrIncompleteConfig)
	}
	c := Content{
		ImageStorageBasePath: d.imagePath,
		ImageBaseURL:         d.imageURL,
		FileStorageBasePath:  d.filePath,
	}
	if c.FileStorageBasePath == "" {
		c.FileStorageBasePath = c.ImageStorageBasePath
	}
	if err := c.Validate(); err != nil {
		return Content{}, err
	}
	return c, nil
}

// ImageURLDefiner completes an image storage definition with its public URL.
type ImageURLDefiner struct {
	def  *ContentDefinition
	path string
}

// MappedToURL sets the public URL the image directory is served from.
func (u *ImageURLDefiner) MappedToURL(url string) *ContentDefinition {
	u.def.imagePath = u.path
	u.def.imageURL = url
	u.def.imagesSet = true
	return u.def
}
