package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-adoption-admin/internal/platform/logger"
)

const (
	DefaultTimeout = 30 * time.Second

	// Política de retry: 3 intentos en total, solo para fallas de red y 5xx.
	// Backoff exponencial desde 1s, jitter aditivo de 0..1s, techo 5s.
	maxAttempts = 3
	backoffBase = 1 * time.Second
	backoffCap  = 5 * time.Second
)

// TokenSource entrega las credenciales de la sesión activa y maneja
// el refresh cuando el backend responde 401. Lo implementa session.Manager.
type TokenSource interface {
	AccessToken() string
	CSRFToken() string
	Refresh(ctx context.Context) error
}

// Client envuelve *http.Client con los cross-cutting concerns del boundary:
// bearer token, correlation id, CSRF, retry con backoff y refresh-en-401.
// La capa de servicio queda declarativa.
type Client struct {
	HTTP    *http.Client
	BaseURL string // opcional; si se define, DoJSON puede recibir paths relativos

	tokens TokenSource
	log    logger.Logger

	// Inyectables para tests deterministas (sin sleeps reales).
	sleep  func(time.Duration)
	jitter func() time.Duration
}

type Options struct {
	BaseURL string
	Timeout time.Duration

	// Opcional: Transport inyectable (p.ej. para tests).
	Transport http.RoundTripper

	// Opcional: sin TokenSource, los requests salen sin Authorization
	// y un 401 no dispara refresh.
	Tokens TokenSource

	Logger logger.Logger
}

func New(opts Options) (*Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL != "" {
		if _, err := url.ParseRequestURI(baseURL); err != nil {
			return nil, fmt.Errorf("invalid base url: %w", err)
		}
		baseURL = strings.TrimRight(baseURL, "/")
	}

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Client{
		HTTP: &http.Client{
			Timeout:   timeout,
			Transport: opts.Transport,
		},
		BaseURL: baseURL,
		tokens:  opts.Tokens,
		log:     log,
		sleep:   time.Sleep,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(time.Second)))
		},
	}, nil
}

// HTTPError representa una respuesta no-2xx que ya agotó retry/refresh.
type HTTPError struct {
	StatusCode int
	Body       string
	RequestID  string
	RetryAfter time.Duration // solo para 429, si el backend mandó Retry-After
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http error: status=%d request_id=%s", e.StatusCode, e.RequestID)
	}
	return fmt.Sprintf("http error: status=%d request_id=%s body=%s", e.StatusCode, e.RequestID, e.Body)
}

// DoJSON hace un request JSON con la política de resiliencia completa:
//   - genera un correlation id (X-Request-ID) por request lógico; los
//     reintentos comparten el mismo id
//   - adjunta Bearer token y CSRF token si hay TokenSource
//   - reintenta fallas de red y 5xx hasta maxAttempts con backoff
//   - nunca reintenta 4xx
//   - ante un 401 intenta exactamente un refresh y reejecuta una vez
//
// Retorna *HTTPError para status no-2xx; error envuelto para fallas de red.
func (c *Client) DoJSON(
	ctx context.Context,
	method string,
	pathOrURL string,
	headers map[string]string,
	in any,
	out any,
) error {
	if c == nil || c.HTTP == nil {
		return errors.New("httpclient: nil client")
	}

	fullURL, err := c.resolveURL(pathOrURL)
	if err != nil {
		return err
	}

	var payload []byte
	if in != nil {
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("httpclient: marshal json: %w", err)
		}
	}

	requestID := uuid.NewString()

	var (
		attempt   int
		refreshed bool // un solo refresh por request lógico; evita loops de refresh
		lastErr   error
	)

	for {
		attempt++

		resp, raw, err := c.doOnce(ctx, method, fullURL, headers, payload, requestID, attempt)
		if err != nil {
			// Falla de red: no hubo respuesta. Retryable.
			lastErr = err
			if attempt < maxAttempts {
				c.backoff(attempt)
				continue
			}
			return fmt.Errorf("httpclient: %s %s failed after %d attempts (request_id=%s): %w",
				method, pathOrURL, attempt, requestID, lastErr)
		}

		if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil && !refreshed {
			refreshed = true
			if rerr := c.tokens.Refresh(ctx); rerr == nil {
				// Token nuevo: reejecutar el request original una sola vez.
				// No cuenta como retry de red ni espera backoff.
				continue
			}
			// Refresh fallido: el TokenSource ya limpió tokens y notificó
			// expiración. Propagamos el 401 original.
			return c.httpError(resp, raw, requestID)
		}

		if resp.StatusCode >= 500 && attempt < maxAttempts {
			c.backoff(attempt)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return c.httpError(resp, raw, requestID)
		}

		if out == nil || len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("httpclient: unmarshal json (request_id=%s): %w", requestID, err)
		}
		return nil
	}
}

func (c *Client) doOnce(
	ctx context.Context,
	method, fullURL string,
	headers map[string]string,
	payload []byte,
	requestID string,
	attempt int,
) (*http.Response, []byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, nil, fmt.Errorf("httpclient: new request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", requestID)

	if c.tokens != nil {
		if tok := c.tokens.AccessToken(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		if csrf := c.tokens.CSRFToken(); csrf != "" {
			req.Header.Set("X-CSRF-Token", csrf)
		}
	}

	for k, v := range headers {
		if strings.TrimSpace(k) == "" {
			continue
		}
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.HTTP.Do(req)
	elapsed := time.Since(start)

	fields := map[string]any{
		"method":      method,
		"url":         fullURL,
		"request_id":  requestID,
		"attempt":     attempt,
		"duration_ms": elapsed.Milliseconds(),
	}

	if err != nil {
		fields["error"] = err.Error()
		c.log.Warn("http request failed", fields)
		return nil, nil, err
	}
	defer resp.Body.Close()

	// Leer body (limitado) para errores / decode. Nunca va al log.
	raw, _ := readAtMost(resp.Body, 1<<20) // 1MB max

	fields["status"] = resp.StatusCode
	if resp.StatusCode >= 400 {
		c.log.Warn("http request completed", fields)
	} else {
		c.log.Info("http request completed", fields)
	}

	return resp, raw, nil
}

func (c *Client) httpError(resp *http.Response, raw []byte, requestID string) *HTTPError {
	e := &HTTPError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(raw)),
		RequestID:  requestID,
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		if secs, err := strconv.Atoi(strings.TrimSpace(resp.Header.Get("Retry-After"))); err == nil && secs > 0 {
			e.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return e
}

// backoff duerme antes del siguiente intento: base * 2^(attempt-1) + jitter,
// con techo backoffCap sobre el total.
func (c *Client) backoff(attempt int) {
	delay := backoffBase << (attempt - 1)
	delay += c.jitter()
	if delay > backoffCap {
		delay = backoffCap
	}
	c.sleep(delay)
}

func (c *Client) resolveURL(pathOrURL string) (string, error) {
	pathOrURL = strings.TrimSpace(pathOrURL)
	if pathOrURL == "" {
		return "", errors.New("httpclient: empty url")
	}

	// Si ya es URL absoluta, úsala tal cual.
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		return pathOrURL, nil
	}

	// Si no es absoluta, requiere BaseURL.
	if strings.TrimSpace(c.BaseURL) == "" {
		return "", errors.New("httpclient: relative path requires BaseURL")
	}

	if !strings.HasPrefix(pathOrURL, "/") {
		pathOrURL = "/" + pathOrURL
	}
	return c.BaseURL + pathOrURL, nil
}

func readAtMost(r io.Reader, max int64) ([]byte, error) {
	if max <= 0 {
		max = 1 << 20
	}
	lr := io.LimitReader(r, max)
	return io.ReadAll(lr)
}
