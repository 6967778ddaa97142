package publishcmd

import (
	"context"

	"github.com/Allenwdk/OxygenBlog/internal/commands"
	"github.com/Allenwdk/OxygenBlog/internal/logging"
	"github.com/Allenwdk/OxygenBlog/internal/publisher"
	"github.com/Allenwdk/OxygenBlog/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	publishOperation   = "publish.article"
	draftOperation     = "publish.save_draft"
	updateOperation    = "publish.update_article"
	deleteOperation    = "publish.delete_article"
	promoteOperation   = "publish.promote_draft"
	directoryOperation = "publish.directory"
	fileOperation      = "publish.file"
)

// ReportSink receives the per-file report produced by the bulk upload
// commands. Handlers call it after a successful run; a nil sink is ignored.
type ReportSink func(publisher.Report)

var (
	_ command.Commander[PublishArticleCommand]   = (*PublishArticleHandler)(nil)
	_ command.Commander[SaveDraftCommand]        = (*SaveDraftHandler)(nil)
	_ command.Commander[UpdateArticleCommand]    = (*UpdateArticleHandler)(nil)
	_ command.Commander[DeleteArticleCommand]    = (*DeleteArticleHandler)(nil)
	_ command.Commander[PromoteDraftCommand]     = (*PromoteDraftHandler)(nil)
	_ command.Commander[PublishDirectoryCommand] = (*PublishDirectoryHandler)(nil)
	_ command.Commander[PublishFileCommand]      = (*PublishFileHandler)(nil)
)

// PublishArticleHandler runs the publish workflow via the shared command
// handler foundation.
type PublishArticleHandler struct {
	inner *commands.Handler[PublishArticleCommand]
}

// NewPublishArticleHandler creates a handler bound to the supplied publish service.
func NewPublishArticleHandler(service *publisher.Service, logger interfaces.Logger, opts ...commands.HandlerOption[PublishArticleCommand]) *PublishArticleHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg PublishArticleCommand) error {
		result, err := service.Publish(ctx, publisher.Request{Metadata: msg.Metadata, Content: msg.Content})
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"filename": result.Filename,
			"slug":     result.Slug,
		}).Info("publish.command.article.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[PublishArticleCommand]{
		commands.WithLogger[PublishArticleCommand](baseLogger),
		commands.WithOperation[PublishArticleCommand](publishOperation),
		commands.WithMessageFields(func(msg PublishArticleCommand) map[string]any {
			return map[string]any{"title": msg.Metadata.Title}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PublishArticleCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishArticleHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[PublishArticleCommand].
func (h *PublishArticleHandler) Execute(ctx context.Context, msg PublishArticleCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SaveDraftHandler stores drafts via the shared command handler foundation.
type SaveDraftHandler struct {
	inner *commands.Handler[SaveDraftCommand]
}

// NewSaveDraftHandler creates a handler bound to the supplied publish service.
func NewSaveDraftHandler(service *publisher.Service, logger interfaces.Logger, opts ...commands.HandlerOption[SaveDraftCommand]) *SaveDraftHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg SaveDraftCommand) error {
		result, err := service.SaveDraft(ctx, publisher.Request{Metadata: msg.Metadata, Content: msg.Content})
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"filename": result.Filename,
		}).Info("publish.command.save_draft.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[SaveDraftCommand]{
		commands.WithLogger[SaveDraftCommand](baseLogger),
		commands.WithOperation[SaveDraftCommand](draftOperation),
		commands.WithMessageFields(func(msg SaveDraftCommand) map[string]any {
			return map[string]any{"title": msg.Metadata.Title}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SaveDraftCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SaveDraftHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[SaveDraftCommand].
func (h *SaveDraftHandler) Execute(ctx context.Context, msg SaveDraftCommand) error {
	return h.inner.Execute(ctx, msg)
}

// UpdateArticleHandler replaces stored articles via the shared command handler foundation.
type UpdateArticleHandler struct {
	inner *commands.Handler[UpdateArticleCommand]
}

// NewUpdateArticleHandler creates a handler bound to the supplied publish service.
func NewUpdateArticleHandler(service *publisher.Service, logger interfaces.Logger, opts ...commands.HandlerOption[UpdateArticleCommand]) *UpdateArticleHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg UpdateArticleCommand) error {
		_, err := service.Update(ctx, publisher.UpdateRequest{
			Filename: msg.Filename,
			Metadata: msg.Metadata,
			Content:  msg.Content,
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[UpdateArticleCommand]{
		commands.WithLogger[UpdateArticleCommand](baseLogger),
		commands.WithOperation[UpdateArticleCommand](updateOperation),
		commands.WithMessageFields(func(msg UpdateArticleCommand) map[string]any {
			return map[string]any{"filename": msg.Filename}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[UpdateArticleCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &UpdateArticleHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[UpdateArticleCommand].
func (h *UpdateArticleHandler) Execute(ctx context.Context, msg UpdateArticleCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DeleteArticleHandler removes published articles via the shared command handler foundation.
type DeleteArticleHandler struct {
	inner *commands.Handler[DeleteArticleCommand]
}

// NewDeleteArticleHandler creates a handler bound to the supplied publish service.
func NewDeleteArticleHandler(service *publisher.Service, logger interfaces.Logger, opts ...commands.HandlerOption[DeleteArticleCommand]) *DeleteArticleHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg DeleteArticleCommand) error {
		return service.Delete(ctx, msg.Filename)
	}

	handlerOpts := []commands.HandlerOption[DeleteArticleCommand]{
		commands.WithLogger[DeleteArticleCommand](baseLogger),
		commands.WithOperation[DeleteArticleCommand](deleteOperation),
		commands.WithMessageFields(func(msg DeleteArticleCommand) map[string]any {
			return map[string]any{"filename": msg.Filename}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[DeleteArticleCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &DeleteArticleHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[DeleteArticleCommand].
func (h *DeleteArticleHandler) Execute(ctx context.Context, msg DeleteArticleCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PromoteDraftHandler publishes drafts via the shared command handler foundation.
type PromoteDraftHandler struct {
	inner *commands.Handler[PromoteDraftCommand]
}

// NewPromoteDraftHandler creates a handler bound to the supplied publish service.
func NewPromoteDraftHandler(service *publisher.Service, logger interfaces.Logger, opts ...commands.HandlerOption[PromoteDraftCommand]) *PromoteDraftHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg PromoteDraftCommand) error {
		result, err := service.PromoteDraft(ctx, msg.Filename)
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"draft":    msg.Filename,
			"filename": result.Filename,
			"slug":     result.Slug,
		}).Info("publish.command.promote_draft.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[PromoteDraftCommand]{
		commands.WithLogger[PromoteDraftCommand](baseLogger),
		commands.WithOperation[PromoteDraftCommand](promoteOperation),
		commands.WithMessageFields(func(msg PromoteDraftCommand) map[string]any {
			return map[string]any{"filename": msg.Filename}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PromoteDraftCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PromoteDraftHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[PromoteDraftCommand].
func (h *PromoteDraftHandler) Execute(ctx context.Context, msg PromoteDraftCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PublishDirectoryHandler runs bulk uploads via the shared command handler foundation.
type PublishDirectoryHandler struct {
	inner *commands.Handler[PublishDirectoryCommand]
}

// NewPublishDirectoryHandler creates a handler bound to the supplied batch
// publisher. The sink, when non-nil, receives the per-file report.
func NewPublishDirectoryHandler(batch *publisher.BatchPublisher, logger interfaces.Logger, sink ReportSink, opts ...commands.HandlerOption[PublishDirectoryCommand]) *PublishDirectoryHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg PublishDirectoryCommand) error {
		report, err := batch.PublishDirectory(ctx, msg.Directory)
		if err != nil {
			return err
		}
		if sink != nil {
			sink(*report)
		}
		logging.WithFields(baseLogger, map[string]any{
			"total":     report.Total,
			"succeeded": report.Succeeded,
			"failed":    report.Failed,
		}).Info("publish.command.directory.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[PublishDirectoryCommand]{
		commands.WithLogger[PublishDirectoryCommand](baseLogger),
		commands.WithOperation[PublishDirectoryCommand](directoryOperation),
		commands.WithMessageFields(func(msg PublishDirectoryCommand) map[string]any {
			return map[string]any{"directory": msg.Directory}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PublishDirectoryCommand](baseLogger)),
		commands.WithTimeout[PublishDirectoryCommand](0),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishDirectoryHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[PublishDirectoryCommand].
func (h *PublishDirectoryHandler) Execute(ctx context.Context, msg PublishDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PublishFileHandler uploads single prepared files via the shared command
// handler foundation.
type PublishFileHandler struct {
	inner *commands.Handler[PublishFileCommand]
}

// NewPublishFileHandler creates a handler bound to the supplied batch
// publisher. The sink, when non-nil, receives the per-file report.
func NewPublishFileHandler(batch *publisher.BatchPublisher, logger interfaces.Logger, sink ReportSink, opts ...commands.HandlerOption[PublishFileCommand]) *PublishFileHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg PublishFileCommand) error {
		report, err := batch.PublishFile(ctx, msg.File)
		if err != nil {
			return err
		}
		if sink != nil {
			sink(*report)
		}
		logging.WithFields(baseLogger, map[string]any{
			"file":      msg.File,
			"succeeded": report.Succeeded,
			"failed":    report.Failed,
		}).Info("publish.command.file.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[PublishFileCommand]{
		commands.WithLogger[PublishFileCommand](baseLogger),
		commands.WithOperation[PublishFileCommand](fileOperation),
		commands.WithMessageFields(func(msg PublishFileCommand) map[string]any {
			return map[string]any{"file": msg.File}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PublishFileCommand](baseLogger)),
		commands.WithTimeout[PublishFileCommand](0),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PublishFileHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[PublishFileCommand].
func (h *PublishFileHandler) Execute(ctx context.Context, msg PublishFileCommand) error {
	return h.inner.Execute(ctx, msg)
}
