// cmd/skywrite/main.go
// Posts to Bluesky from the command line, with facets, link cards, images,
// video and replies.
//
// Usage:
//
//	skywrite [flags] <text>
//	skywrite -image cat.jpg -alt "a cat" "look at this"
//	skywrite -reply https://bsky.app/profile/alice.bsky.social/post/3kabc "agreed"
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"Skywrite/internal/atproto/identity"
	"Skywrite/internal/atproto/pds"
	atvideo "Skywrite/internal/atproto/video"
	"Skywrite/internal/config"
	"Skywrite/internal/core/blobs"
	"Skywrite/internal/core/embeds"
	"Skywrite/internal/core/images"
	"Skywrite/internal/core/posts"
	"Skywrite/internal/core/richtext"
	"Skywrite/internal/core/unfurl"
	"Skywrite/internal/core/video"
)

// stringList collects a repeatable string flag
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath string
		link       string
		videoPath  string
		videoAlt   string
		replyTo    string
		verbose    bool
		imagePaths stringList
		alts       stringList
		langs      stringList
	)

	flag.StringVar(&configPath, "config", os.Getenv("SKYWRITE_CONFIG"), "Path to a YAML config file")
	flag.StringVar(&link, "link", "", "URL to attach as a link card")
	flag.Var(&imagePaths, "image", "Image path or URL to attach (repeatable, max 4)")
	flag.Var(&alts, "alt", "Alt text for the image at the same position (repeatable)")
	flag.StringVar(&videoPath, "video", "", "Video file to attach")
	flag.StringVar(&videoAlt, "video-alt", "", "Alt text for the video")
	flag.StringVar(&replyTo, "reply", "", "Post URL or AT-URI to reply to")
	flag.Var(&langs, "lang", "Language tag of the post, e.g. en (repeatable)")
	flag.BoolVar(&verbose, "v", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	text := strings.Join(flag.Args(), " ")
	if len(alts) > len(imagePaths) {
		return fmt.Errorf("got %d -alt values for %d images", len(alts), len(imagePaths))
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newPDSClient(ctx, cfg.PDS)
	if err != nil {
		return err
	}
	slog.Info("[SKYWRITE] authenticated", "did", client.DID(), "pds", client.HostURL(),
		"access_token", cfg.PDS.UsesAccessToken())

	svc := newPostService(cfg, client)

	req := posts.CreatePostRequest{
		Text:        text,
		ExternalURL: link,
		ReplyTo:     replyTo,
		Langs:       langs,
	}
	for i, p := range imagePaths {
		input := embeds.ImageInput{Source: imageSource(p)}
		if i < len(alts) {
			input.Alt = alts[i]
		}
		req.Images = append(req.Images, input)
	}
	if videoPath != "" {
		req.Video = &embeds.VideoInput{Path: videoPath, Alt: videoAlt}
	}

	resp, err := svc.CreatePost(ctx, req)
	if err != nil {
		if errors.Is(err, video.ErrJobTimeout) {
			return fmt.Errorf("video was still processing when we gave up: %w", err)
		}
		return err
	}

	fmt.Println(resp.URI)
	return nil
}

func newPDSClient(ctx context.Context, cfg config.PDSConfig) (pds.Client, error) {
	return pds.Connect(ctx, pds.Credentials{
		Host:        cfg.Host,
		Handle:      cfg.Handle,
		AppPassword: cfg.AppPassword,
		DID:         cfg.DID,
		AccessToken: cfg.AccessToken,
	})
}

func newPostService(cfg *config.Config, client pds.Client) posts.Service {
	resolver := identity.NewResolver(identity.Config{
		PLCURL:    cfg.Identity.PLCURL,
		CacheSize: cfg.Identity.CacheSize,
		CacheTTL:  cfg.Identity.CacheTTL,
	})
	mentions := identity.NewMentionResolver(resolver)

	builder := embeds.NewBuilder(embeds.Config{
		Unfurl: unfurl.NewService(
			unfurl.WithTimeout(cfg.Unfurl.Timeout),
			unfurl.WithUserAgent(cfg.Unfurl.UserAgent),
		),
		Loader:        images.NewLoader(cfg.Images.FetchTimeout, cfg.Images.MaxSourceBytes, cfg.Unfurl.UserAgent),
		Reducer:       images.NewReducer(cfg.Images.Quality),
		Blobs:         blobs.NewBlobService(client, 0),
		Videos:        newVideoPoller(cfg.Video, client, identity.NewPDSLocator(resolver)),
		Prober:        newProber(),
		MaxImageBytes: cfg.Images.MaxBytes,
	})

	return posts.NewPostService(client, richtext.NewExtractor(mentions), builder, mentions)
}

// newVideoPoller addresses upload tokens to the account's own PDS, found
// through its DID document, since the login host may only be an entryway.
func newVideoPoller(cfg config.VideoConfig, client pds.Client, locator *identity.PDSLocator) embeds.VideoProcessor {
	jobs := atvideo.NewClient(cfg.ServiceURL, client, locator, &http.Client{Timeout: cfg.Timeout})
	return video.NewPoller(jobs,
		video.WithPollInterval(cfg.PollInterval),
		video.WithTimeout(cfg.Timeout),
	)
}

// newProber returns nil when ffprobe is not installed; video posts then
// fail with embeds.ErrVideoUnavailable
func newProber() video.Prober {
	probe, err := video.NewFFProbe()
	if err != nil {
		slog.Debug("[SKYWRITE] video support disabled", "error", err)
		return nil
	}
	return probe
}

func imageSource(p string) images.Source {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return images.Source{URL: p}
	}
	return images.Source{Path: p}
}
