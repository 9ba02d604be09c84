package api

import (
	"github.com/starford/autotag/internal/autotag"
	"github.com/starford/autotag/internal/index"
)

// TagListResponse lists tags with their document counts.
type TagListResponse struct {
	Tags []index.TagCount `json:"tags" validate:"required"`
}

// TagResponse lists the documents linked from a tag document.
type TagResponse struct {
	Tag       string   `json:"tag" example:"rust" validate:"required"`
	Backlinks []string `json:"backlinks" example:"Alpha,Beta" validate:"required"`
}

// DocumentTagsResponse lists the tags last applied to a document.
type DocumentTagsResponse struct {
	Title string   `json:"title" example:"Alpha" validate:"required"`
	Tags  []string `json:"tags" example:"rust,cli-tools" validate:"required"`
}

// ProcessRequest is the request body for processing a document.
type ProcessRequest struct {
	Path string `json:"path" example:"notes/Alpha.md" validate:"required"`
}

// ProcessResponse is the outcome of processing a document.
type ProcessResponse = autotag.Result

// ReconcileResponse lists the per-document changes made by a reconcile pass.
type ReconcileResponse struct {
	Reports []*autotag.Report `json:"reports" validate:"required"`
}
