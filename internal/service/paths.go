package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"gencut/config"
	"gencut/internal/mediadirs"
	"gencut/log"
	apperrors "gencut/pkg/errors"
	"gencut/pkg/util"
)

// Injection points for filesystem and clock access in tests.
var (
	statFile  = os.Stat
	sleepFunc = time.Sleep
)

// normalizeMediaRef rewrites a media reference onto the canonical directory
// layout. Callers historically sent container-local paths from older
// deployments; all of those collapse onto the upload or separated dirs by
// basename. A reference that is already canonical passes through unchanged.
func normalizeMediaRef(dirs mediadirs.Paths, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if isRemoteRef(ref) {
		return ref
	}

	cleaned := filepath.ToSlash(filepath.Clean(ref))
	base := filepath.Base(cleaned)

	legacyUploadPrefixes := []string{
		"/app/videos/uploads/",
		"/app/uploads/",
		"/videos/uploads/",
	}
	for _, prefix := range legacyUploadPrefixes {
		if strings.HasPrefix(cleaned, prefix) {
			return filepath.Join(dirs.UploadDir, base)
		}
	}
	if strings.Contains(cleaned, "/separated/") {
		return filepath.Join(dirs.SeparatedDir, base)
	}
	if strings.Contains(cleaned, "/cutdowns/") {
		return filepath.Join(dirs.CutdownDir, base)
	}
	if strings.Contains(cleaned, "/uploads/") {
		return filepath.Join(dirs.UploadDir, base)
	}
	if !strings.Contains(cleaned, "/") {
		// Bare filename, assume it was uploaded.
		return filepath.Join(dirs.UploadDir, base)
	}
	return filepath.Clean(ref)
}

func isRemoteRef(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// ResolveMediaRef turns a caller-supplied media reference into a readable
// local path. Remote URLs are downloaded into the upload dir. Local refs are
// normalized, then waited for on shared storage, then fetched from configured
// peers as a last resort.
func (s Service) ResolveMediaRef(ctx context.Context, ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", apperrors.New(apperrors.CodeInvalidInput, "Media reference is empty")
	}

	if isRemoteRef(ref) {
		return s.downloadToUploads(ctx, ref)
	}

	localPath := normalizeMediaRef(s.dirs, ref)
	if s.waitForFile(ctx, localPath) {
		return localPath, nil
	}

	// Shared storage never saw the file. It may only exist on a peer that
	// handled the upload.
	fetched, err := s.fetchFromPeers(ctx, filepath.Base(localPath))
	if err == nil {
		return fetched, nil
	}
	log.GetLogger().Warn("peer fetch failed", zap.String("ref", ref), zap.Error(err))

	return "", apperrors.WrapWithDetail(apperrors.CodeFileNotFound, "Media file not found", localPath, nil)
}

// waitForFile polls for a non-empty file until the configured timeout.
// Covers writes still in flight on shared volumes.
func (s Service) waitForFile(ctx context.Context, path string) bool {
	timeout := time.Duration(config.Conf.Fetch.WaitTimeoutSec * float64(time.Second))
	interval := time.Duration(config.Conf.Fetch.PollIntervalSec * float64(time.Second))
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	deadline := time.Now().Add(timeout)
	for {
		if info, err := statFile(path); err == nil && info.Size() > 0 {
			return true
		}
		if ctx.Err() != nil || time.Now().After(deadline) {
			return false
		}
		sleepFunc(interval)
	}
}

func (s Service) downloadToUploads(ctx context.Context, url string) (string, error) {
	if err := os.MkdirAll(s.dirs.UploadDir, 0o755); err != nil {
		return "", apperrors.Wrap(apperrors.CodeFileWriteError, "Upload directory creation failed", err)
	}

	name := filepath.Base(strings.SplitN(url, "?", 2)[0])
	if name == "" || name == "." || name == "/" {
		name = "download.bin"
	}
	target := filepath.Join(s.dirs.UploadDir, name)

	// resty writes the body to SetOutput regardless of status, so the
	// canonical path only ever receives a confirmed 2xx body.
	part := partPath(target)
	defer os.Remove(part)

	client := resty.New().SetTimeout(time.Duration(config.Conf.Fetch.TimeoutSec) * time.Second)
	resp, err := client.R().SetContext(ctx).SetOutput(part).Get(url)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeAudioDownload, "Remote media download failed", err)
	}
	if resp.IsError() {
		return "", apperrors.WrapWithDetail(apperrors.CodeAudioDownload, "Remote media download failed",
			fmt.Sprintf("status %d for %s", resp.StatusCode(), url), nil)
	}
	if err = os.Rename(part, target); err != nil {
		return "", apperrors.Wrap(apperrors.CodeFileWriteError, "Downloaded media store failed", err)
	}

	log.GetLogger().Info("remote media downloaded", zap.String("url", url), zap.String("target", target))
	return target, nil
}

func partPath(target string) string {
	return fmt.Sprintf("%s.part-%s", target, util.GenerateRandStringWithUpperLowerNum(8))
}

// fetchFromPeers tries each configured peer's public upload URL for the named
// file and stores the first hit in the upload dir.
func (s Service) fetchFromPeers(ctx context.Context, name string) (string, error) {
	peers := config.Conf.Fetch.Peers
	if len(peers) == 0 {
		return "", fmt.Errorf("no peers configured")
	}
	if err := os.MkdirAll(s.dirs.UploadDir, 0o755); err != nil {
		return "", err
	}

	target := filepath.Join(s.dirs.UploadDir, name)
	part := partPath(target)
	defer os.Remove(part)

	client := resty.New().
		SetTimeout(time.Duration(config.Conf.Fetch.TimeoutSec) * time.Second).
		SetRetryCount(config.Conf.Fetch.Retries)

	var lastErr error
	for _, peer := range peers {
		url := strings.TrimSuffix(peer, "/") + "/videos/uploads/" + name
		resp, err := client.R().SetContext(ctx).SetOutput(part).Get(url)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.IsError() {
			// The peer's error body landed in the side file; it must never
			// surface at the canonical path as media.
			lastErr = fmt.Errorf("peer %s returned status %d", peer, resp.StatusCode())
			continue
		}
		if err = os.Rename(part, target); err != nil {
			lastErr = err
			continue
		}
		log.GetLogger().Info("media fetched from peer", zap.String("peer", peer), zap.String("name", name))
		return target, nil
	}
	return "", lastErr
}
