// Package file is durable byte storage for uploaded content.
//
// Storage addresses blobs by flat keys. LocalStorage keeps them as files
// under FOLDER_PATH and rejects keys that would escape it; S3Storage keeps
// them as objects in one bucket. New picks the backend from Config:
//
//	var cfg file.Config
//	config.MustLoad(&cfg)
//	store, err := file.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := store.EnsureDir(ctx); err != nil {
//		return err
//	}
//	err = store.WriteFile(ctx, key, data)
//
// Renditions of a blob live beside it under RenditionKey(key, width).
// DetectContentType resolves a content type from the file name and falls
// back to sniffing the first bytes of the content.
package file
