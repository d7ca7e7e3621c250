package connectivity

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ============================================================
// Prober
// ============================================================

// Prober периодически проверяет доступность URL и передаёт результат в Monitor.
type Prober struct {
	url      string
	interval time.Duration
	client   *http.Client
	monitor  *Monitor
	logger   *zap.Logger
}

func NewProber(url string, interval time.Duration, monitor *Monitor, logger *zap.Logger) *Prober {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	timeout := interval / 2
	if timeout > 5*time.Second {
		timeout = 5 * time.Second
	}
	return &Prober{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: timeout},
		monitor:  monitor,
		logger:   logger,
	}
}

// Run проверяет сразу и затем каждые interval, пока ctx не отменён.
func (p *Prober) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.ProbeOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProbeOnce(ctx)
		}
	}
}

// ProbeOnce выполняет одну проверку. Любой ответ сервера (даже 5xx) означает,
// что сеть есть; offline бывает только при транспортной ошибке.
func (p *Prober) ProbeOnce(ctx context.Context) bool {
	online := p.check(ctx)
	if ctx.Err() != nil {
		return p.monitor.Online()
	}

	if online != p.monitor.Online() {
		p.logger.Info("connectivity changed", zap.Bool("online", online), zap.String("url", p.url))
	}
	p.monitor.Set(online)
	return online
}

func (p *Prober) check(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		p.logger.Warn("connectivity probe request", zap.Error(err))
		return false
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("connectivity probe failed", zap.Error(err))
		return false
	}
	resp.Body.Close()
	return true
}
