package perch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Source fetches raw asset bytes.
type Source interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Decoded is a decoded asset: a fresh scene subtree and its clips, in the
// order the asset defines them.
type Decoded struct {
	Root  *Node
	Clips []*Clip
}

// Decoder turns fetched bytes into a scene subtree. Every call must return
// an independent tree. Decoders must not modify data, which may be shared
// between concurrent loads of the same URL.
type Decoder interface {
	Decode(data []byte) (*Decoded, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(data []byte) (*Decoded, error)

// Decode implements Decoder.
func (f DecoderFunc) Decode(data []byte) (*Decoded, error) {
	return f(data)
}

// HTTPSource fetches assets over HTTP(S).
type HTTPSource struct {
	// Client defaults to a client with a 30 second timeout.
	Client *http.Client
}

var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

// Fetch implements Source.
func (s HTTPSource) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = defaultHTTPClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return data, nil
}

// FSSource reads assets from a file system. URLs are slash-separated paths
// within FS; a leading slash is ignored.
type FSSource struct {
	FS fs.FS
}

// Fetch implements Source.
func (s FSSource) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.FS, strings.TrimPrefix(url, "/"))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return data, nil
}

// loadResult carries a finished load back to the update goroutine.
type loadResult struct {
	asset   *Asset
	decoded *Decoded
	err     error
}

// loadResultBuffer bounds how many finished loads may wait for the next tick
// before loader goroutines block.
const loadResultBuffer = 16

// Loader fetches and decodes assets on background goroutines. Concurrent
// fetches of the same URL share one request. Results are handed to the
// update goroutine through a channel drained by poll.
type Loader struct {
	source  Source
	decoder Decoder

	group   singleflight.Group
	results chan loadResult

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLoader creates a loader. Close stops in-flight loads.
func NewLoader(source Source, decoder Decoder) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		source:  source,
		decoder: decoder,
		results: make(chan loadResult, loadResultBuffer),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// load starts loading a on a new goroutine and marks it Loading.
func (l *Loader) load(a *Asset) {
	a.state = AssetLoading
	url := a.spec.URL
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		decoded, err := l.fetchDecode(url)
		select {
		case l.results <- loadResult{asset: a, decoded: decoded, err: err}:
		case <-l.ctx.Done():
		}
	}()
}

func (l *Loader) fetchDecode(url string) (*Decoded, error) {
	v, err, shared := l.group.Do(url, func() (any, error) {
		Logger().Info("perch: fetching asset", "url", url)
		return l.source.Fetch(l.ctx, url)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		Logger().Debug("perch: shared asset fetch", "url", url)
	}
	decoded, err := l.decoder.Decode(v.([]byte))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	if decoded == nil || decoded.Root == nil {
		return nil, fmt.Errorf("decode %s: empty scene: %w", url, ErrUnsupportedAsset)
	}
	return decoded, nil
}

// poll returns every finished load without blocking.
func (l *Loader) poll() []loadResult {
	var out []loadResult
	for {
		select {
		case r := <-l.results:
			out = append(out, r)
		default:
			return out
		}
	}
}

// Wait blocks until every started load has finished and queued its result.
// It must not be called while more than loadResultBuffer results are
// waiting to be polled.
func (l *Loader) Wait() {
	l.wg.Wait()
}

// Close cancels in-flight loads and waits for their goroutines to exit.
// Results not yet polled are discarded.
func (l *Loader) Close() {
	l.cancel()
	l.wg.Wait()
}
