package gdrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/driveloader/internal/engine"
	"github.com/tanq16/driveloader/internal/utils"
)

const maxVideoInfoSize = 4 << 20

// ErrNoVideoURL means get_video_info answered but carried no playable stream.
var ErrNoVideoURL = errors.New("unable to retrieve the video URL")

type hintedError struct {
	err   error
	hints []string
}

func (e *hintedError) Error() string   { return e.err.Error() }
func (e *hintedError) Unwrap() error   { return e.err }
func (e *hintedError) Hints() []string { return e.hints }

type GDriveDownloader struct {
	// Cookies overrides the job's cookie file when set.
	Cookies CookieProvider
	// InfoEndpoint replaces the get_video_info endpoint, mostly for tests.
	InfoEndpoint string
}

func (d *GDriveDownloader) ValidateJob(job *utils.DriveJob) error {
	videoID, err := ExtractVideoID(job.URL)
	if err != nil {
		return err
	}
	if job.Metadata == nil {
		job.Metadata = make(map[string]any)
	}
	job.Metadata["videoID"] = videoID
	if job.ChunkSize < 0 {
		return fmt.Errorf("chunk size must be positive, got %d", job.ChunkSize)
	}
	if job.CookieFile != "" && d.Cookies == nil {
		if _, err := os.Stat(job.CookieFile); err != nil {
			return fmt.Errorf("cookie file not found: %w", err)
		}
	}
	log.Info().Str("op", "google-drive/initial").Msgf("job validated for %s", videoID)
	return nil
}

func (d *GDriveDownloader) cookieProvider(job *utils.DriveJob) CookieProvider {
	if d.Cookies != nil {
		return d.Cookies
	}
	if job.CookieFile != "" {
		return FileCookieProvider{Path: job.CookieFile}
	}
	return StaticCookieProvider{}
}

// BuildJob resolves the playable stream URL and destination name with a single
// get_video_info request.
func (d *GDriveDownloader) BuildJob(ctx context.Context, job *utils.DriveJob) error {
	videoID, _ := job.Metadata["videoID"].(string)
	if videoID == "" {
		return fmt.Errorf("job has not been validated")
	}
	cookies, err := d.cookieProvider(job).AcquireCookies(ctx)
	if err != nil {
		return err
	}
	if cookies == nil {
		cookies = make(map[string]string)
	}
	if missing := MissingRequired(cookies); len(missing) > 0 {
		log.Warn().Str("op", "google-drive/initial").Msgf("cookies %v are missing, view-only videos will be denied", missing)
	}

	endpoint := d.InfoEndpoint
	if endpoint == "" {
		endpoint = videoInfoEndpoint
	}
	infoURL := videoInfoURL(endpoint, videoID)
	client := utils.NewDriveHTTPClient(job.HTTPClientConfig)
	if err := client.SetCookies(infoURL, cookies); err != nil {
		return err
	}
	body, responseCookies, err := fetchVideoInfo(ctx, client, infoURL)
	if err != nil {
		return err
	}
	log.Debug().Str("op", "google-drive/initial").Msgf("received %d bytes of video info and %d cookies", len(body), len(responseCookies))
	maps.Copy(cookies, responseCookies)

	info := ParseVideoInfo(body)
	if info.VideoURL == "" {
		hints := []string{
			"Check that the video ID is correct",
			"View-only videos need cookies, pass --cookie-file",
			"Your account may not have access to this video",
		}
		return &hintedError{err: fmt.Errorf("%w for %s", ErrNoVideoURL, videoID), hints: hints}
	}
	job.OutputPath = ResolveFilename(job.OutputPath, info.Title, videoID)
	job.Metadata["videoURL"] = info.VideoURL
	job.Metadata["title"] = info.Title
	job.Metadata["cookies"] = cookies
	log.Info().Str("op", "google-drive/initial").Msgf("job built for %s as %s", videoID, job.OutputPath)
	return nil
}

func fetchVideoInfo(ctx context.Context, client *utils.DriveHTTPClient, infoURL string) (string, map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, infoURL, nil)
	if err != nil {
		return "", nil, fmt.Errorf("error creating video info request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		policy := engine.DefaultRetryPolicy()
		return "", nil, &engine.DownloadError{Class: policy.ClassifyError(err, context.Cause(ctx)), Attempts: 1,
			Err: fmt.Errorf("error fetching video info: %w", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		policy := engine.DefaultRetryPolicy()
		return "", nil, &engine.DownloadError{Class: policy.ClassifyStatus(resp.StatusCode), Attempts: 1,
			StatusCode: resp.StatusCode, Err: fmt.Errorf("video info request failed")}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxVideoInfoSize))
	if err != nil {
		return "", nil, fmt.Errorf("error reading video info: %w", err)
	}
	cookies := make(map[string]string)
	for _, c := range resp.Cookies() {
		cookies[c.Name] = c.Value
	}
	return string(data), cookies, nil
}
