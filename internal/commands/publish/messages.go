// Package publishcmd exposes the publish workflow as go-command messages so
// callers can dispatch article operations through the shared handler
// foundation.
package publishcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Allenwdk/OxygenBlog/internal/article"
)

const (
	publishArticleMessageType   = "blog.publish.article"
	saveDraftMessageType        = "blog.publish.save_draft"
	updateArticleMessageType    = "blog.publish.update_article"
	deleteArticleMessageType    = "blog.publish.delete_article"
	promoteDraftMessageType     = "blog.publish.promote_draft"
	publishDirectoryMessageType = "blog.publish.directory"
	publishFileMessageType      = "blog.publish.file"
)

func requiredString(code, message string) validation.Rule {
	return validation.By(func(value any) error {
		if strings.TrimSpace(value.(string)) == "" {
			return validation.NewError(code, message)
		}
		return nil
	})
}

// PublishArticleCommand publishes a new article from editor input.
type PublishArticleCommand struct {
	Metadata article.Metadata `json:"metadata"`
	Content  string           `json:"content"`
}

// Type implements command.Message.
func (PublishArticleCommand) Type() string { return publishArticleMessageType }

// Validate ensures the title and body are present before handlers execute.
func (cmd PublishArticleCommand) Validate() error {
	return validation.Errors{
		"title":   requiredString("blog.publish.article.title_required", "title is required").Validate(cmd.Metadata.Title),
		"content": requiredString("blog.publish.article.content_required", "content is required").Validate(cmd.Content),
	}.Filter()
}

// SaveDraftCommand stores an article in the drafts namespace.
type SaveDraftCommand struct {
	Metadata article.Metadata `json:"metadata"`
	Content  string           `json:"content"`
}

// Type implements command.Message.
func (SaveDraftCommand) Type() string { return saveDraftMessageType }

// Validate ensures the title and body are present before handlers execute.
func (cmd SaveDraftCommand) Validate() error {
	return validation.Errors{
		"title":   requiredString("blog.publish.save_draft.title_required", "title is required").Validate(cmd.Metadata.Title),
		"content": requiredString("blog.publish.save_draft.content_required", "content is required").Validate(cmd.Content),
	}.Filter()
}

// UpdateArticleCommand replaces a stored article in full.
type UpdateArticleCommand struct {
	Filename string           `json:"filename"`
	Metadata article.Metadata `json:"metadata"`
	Content  string           `json:"content"`
}

// Type implements command.Message.
func (UpdateArticleCommand) Type() string { return updateArticleMessageType }

// Validate ensures the target filename and replacement content are present.
func (cmd UpdateArticleCommand) Validate() error {
	return validation.Errors{
		"filename": requiredString("blog.publish.update_article.filename_required", "filename is required").Validate(cmd.Filename),
		"title":    requiredString("blog.publish.update_article.title_required", "title is required").Validate(cmd.Metadata.Title),
		"content":  requiredString("blog.publish.update_article.content_required", "content is required").Validate(cmd.Content),
	}.Filter()
}

// DeleteArticleCommand removes a published article by filename.
type DeleteArticleCommand struct {
	Filename string `json:"filename"`
}

// Type implements command.Message.
func (DeleteArticleCommand) Type() string { return deleteArticleMessageType }

// Validate ensures the target filename is present.
func (cmd DeleteArticleCommand) Validate() error {
	return validation.Errors{
		"filename": requiredString("blog.publish.delete_article.filename_required", "filename is required").Validate(cmd.Filename),
	}.Filter()
}

// PromoteDraftCommand publishes a stored draft and removes it from the
// drafts namespace.
type PromoteDraftCommand struct {
	Filename string `json:"filename"`
}

// Type implements command.Message.
func (PromoteDraftCommand) Type() string { return promoteDraftMessageType }

// Validate ensures the draft filename is present.
func (cmd PromoteDraftCommand) Validate() error {
	return validation.Errors{
		"filename": requiredString("blog.publish.promote_draft.filename_required", "filename is required").Validate(cmd.Filename),
	}.Filter()
}

// PublishDirectoryCommand runs a bulk upload over a local source directory.
type PublishDirectoryCommand struct {
	Directory string `json:"directory"`
}

// Type implements command.Message.
func (PublishDirectoryCommand) Type() string { return publishDirectoryMessageType }

// Validate ensures the source directory is present.
func (cmd PublishDirectoryCommand) Validate() error {
	return validation.Errors{
		"directory": requiredString("blog.publish.directory.directory_required", "directory is required").Validate(cmd.Directory),
	}.Filter()
}

// PublishFileCommand uploads a single prepared Markdown file.
type PublishFileCommand struct {
	File string `json:"file"`
}

// Type implements command.Message.
func (PublishFileCommand) Type() string { return publishFileMessageType }

// Validate ensures the source file is present.
func (cmd PublishFileCommand) Validate() error {
	return validation.Errors{
		"file": requiredString("blog.publish.file.file_required", "file is required").Validate(cmd.File),
	}.Filter()
}
