package blog

import (
	"fmt"

	"github.com/Allenwdk/OxygenBlog/internal/commands"
	publishcmd "github.com/Allenwdk/OxygenBlog/internal/commands/publish"
)

// CommandRegistry records command handlers so hosts can expose them via a
// CLI, cron runner, or dispatcher.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandOptions configures the command handlers built by Module.Commands.
type CommandOptions struct {
	// ReportSink receives the per-file report produced by the bulk upload
	// commands. Optional.
	ReportSink publishcmd.ReportSink
}

// CommandHandlers bundles the module's publish command handlers.
type CommandHandlers struct {
	PublishArticle   *publishcmd.PublishArticleHandler
	SaveDraft        *publishcmd.SaveDraftHandler
	UpdateArticle    *publishcmd.UpdateArticleHandler
	DeleteArticle    *publishcmd.DeleteArticleHandler
	PromoteDraft     *publishcmd.PromoteDraftHandler
	PublishDirectory *publishcmd.PublishDirectoryHandler
	PublishFile      *publishcmd.PublishFileHandler
}

// All returns the handlers in registration order.
func (h *CommandHandlers) All() []any {
	return []any{
		h.PublishArticle,
		h.SaveDraft,
		h.UpdateArticle,
		h.DeleteArticle,
		h.PromoteDraft,
		h.PublishDirectory,
		h.PublishFile,
	}
}

// Commands builds the publish command handlers bound to the module's
// services.
func (m *Module) Commands(opts CommandOptions) *CommandHandlers {
	logger := commands.CommandLogger(m.provider, "publish")
	return &CommandHandlers{
		PublishArticle:   publishcmd.NewPublishArticleHandler(m.service, logger),
		SaveDraft:        publishcmd.NewSaveDraftHandler(m.service, logger),
		UpdateArticle:    publishcmd.NewUpdateArticleHandler(m.service, logger),
		DeleteArticle:    publishcmd.NewDeleteArticleHandler(m.service, logger),
		PromoteDraft:     publishcmd.NewPromoteDraftHandler(m.service, logger),
		PublishDirectory: publishcmd.NewPublishDirectoryHandler(m.batch, logger, opts.ReportSink),
		PublishFile:      publishcmd.NewPublishFileHandler(m.batch, logger, opts.ReportSink),
	}
}

// RegisterCommands builds the handlers and records each one with the
// supplied registry.
func (m *Module) RegisterCommands(registry CommandRegistry, opts CommandOptions) (*CommandHandlers, error) {
	handlers := m.Commands(opts)
	if registry == nil {
		return handlers, nil
	}
	for _, handler := range handlers.All() {
		if err := registry.RegisterCommand(handler); err != nil {
			return nil, fmt.Errorf("blog: register command: %w", err)
		}
	}
	return handlers, nil
}
