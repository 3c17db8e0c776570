package services

import (
	"context"

	"github.com/bomin1134/gb-ud-portal/internal/attachments"
	"github.com/bomin1134/gb-ud-portal/internal/logging"
	"github.com/bomin1134/gb-ud-portal/internal/server/objectstore"
	"golang.org/x/sync/errgroup"
)

type uploader struct {
	store objectstore.Store
	log   logging.Logger
	limit int
}

// upload stores files with at most limit uploads in flight. A failing file
// never cancels its siblings; refs come back in input order with failures
// left out.
func (u uploader) upload(ctx context.Context, files []FileUpload, ref func(FileUpload) attachments.Ref) ([]attachments.Ref, []UploadFailure) {
	refs := make([]attachments.Ref, len(files))
	errs := make([]error, len(files))

	var g errgroup.Group
	g.SetLimit(max(u.limit, 1))
	for i, f := range files {
		g.Go(func() error {
			r := ref(f)
			if err := u.store.Put(ctx, r.Path, f.Data, f.ContentType); err != nil {
				errs[i] = err
				return nil
			}
			refs[i] = r
			return nil
		})
	}
	_ = g.Wait()

	uploaded := make([]attachments.Ref, 0, len(files))
	var failed []UploadFailure
	for i, f := range files {
		if errs[i] != nil {
			u.log.Warn(ctx, "upload failed", "file", f.Name, "error", errs[i])
			failed = append(failed, UploadFailure{Name: attachments.DisplayName(f.Name), Error: errs[i].Error()})
			continue
		}
		uploaded = append(uploaded, refs[i])
	}
	return uploaded, failed
}
