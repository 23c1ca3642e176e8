package statuscheck

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"
)

// RedisPinger models the minimal Redis capability we need for status checks.
type RedisPinger interface {
    Ping(ctx context.Context) error
}

// OfficeChecker reports the office converter's version string
type OfficeChecker interface {
    CheckInstallation(ctx context.Context) (string, error)
}

// PrinterLister is the slice of the print spooler the checks use
type PrinterLister interface {
    Available() error
    Printers(ctx context.Context) ([]string, error)
    Default(ctx context.Context) (string, error)
}

// BucketChecker checks that the export bucket is reachable
type BucketChecker interface {
    Bucket() string
    HeadBucket(ctx context.Context) error
}

// Checker aggregates health checks for the external programs and services a batch may touch.
type Checker struct {
    office  OfficeChecker
    spooler PrinterLister
    redis   RedisPinger
    bucket  BucketChecker
    timeout time.Duration
}

// Options configures the Checker. Nil dependencies report as not configured.
type Options struct {
    Office  OfficeChecker
    Spooler PrinterLister
    Redis   RedisPinger
    Bucket  BucketChecker
    Timeout time.Duration
}

// Status represents the readiness of a subsystem.
type Status struct {
    OK       bool   `json:"ok"`
    Message  string `json:"message"`
    Optional bool   `json:"optional"`
}

// Summary bundles all subsystem statuses.
type Summary struct {
    LibreOffice Status `json:"libreoffice"`
    Printing    Status `json:"printing"`
    Redis       Status `json:"redis"`
    S3          Status `json:"s3"`
}

// Ready is true when every required subsystem is OK
func (s Summary) Ready() bool {
    for _, st := range s.Entries() {
        if !st.Status.OK && !st.Status.Optional {
            return false
        }
    }
    return true
}

// Entry is a named status, in display order
type Entry struct {
    Name   string
    Status Status
}

func (s Summary) Entries() []Entry {
    return []Entry{
        {"LibreOffice", s.LibreOffice},
        {"Printing", s.Printing},
        {"Redis", s.Redis},
        {"S3", s.S3},
    }
}

// New creates a new Checker with the provided options.
func New(opts Options) *Checker {
    timeout := opts.Timeout
    if timeout <= 0 {
        timeout = 5 * time.Second
    }
    return &Checker{
        office:  opts.Office,
        spooler: opts.Spooler,
        redis:   opts.Redis,
        bucket:  opts.Bucket,
        timeout: timeout,
    }
}

// Summary returns the current status snapshot.
func (c *Checker) Summary(ctx context.Context) Summary {
    return Summary{
        LibreOffice: c.checkLibreOffice(ctx),
        Printing:    c.checkPrinting(ctx),
        Redis:       c.checkRedis(ctx),
        S3:          c.checkS3(ctx),
    }
}

func (c *Checker) checkLibreOffice(ctx context.Context) Status {
    if c.office == nil {
        return Status{OK: false, Message: "converter not configured"}
    }
    ctx, cancel := context.WithTimeout(ctx, c.timeout)
    defer cancel()
    version, err := c.office.CheckInstallation(ctx)
    if err != nil {
        return Status{OK: false, Message: trimError(err)}
    }
    return Status{OK: true, Message: version}
}

func (c *Checker) checkPrinting(ctx context.Context) Status {
    // Exports to a directory or bucket work without CUPS
    st := Status{Optional: true}
    if c.spooler == nil {
        st.Message = "spooler not configured"
        return st
    }
    if err := c.spooler.Available(); err != nil {
        st.Message = trimError(err)
        return st
    }
    ctx, cancel := context.WithTimeout(ctx, c.timeout)
    defer cancel()
    printers, err := c.spooler.Printers(ctx)
    if err != nil {
        st.Message = trimError(err)
        return st
    }
    st.OK = true
    st.Message = fmt.Sprintf("%d printer(s)", len(printers))
    if def, err := c.spooler.Default(ctx); err == nil && def != "" {
        st.Message += ", default " + def
    }
    return st
}

func (c *Checker) checkRedis(ctx context.Context) Status {
    if c.redis == nil {
        return Status{OK: false, Optional: true, Message: "not configured"}
    }
    ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
    defer cancel()
    if err := c.redis.Ping(ctx); err != nil {
        return Status{OK: false, Optional: true, Message: trimError(err)}
    }
    return Status{OK: true, Optional: true, Message: "Connected"}
}

func (c *Checker) checkS3(ctx context.Context) Status {
    if c.bucket == nil {
        return Status{OK: false, Optional: true, Message: "Bucket not configured"}
    }
    ctx, cancel := context.WithTimeout(ctx, c.timeout)
    defer cancel()
    if err := c.bucket.HeadBucket(ctx); err != nil {
        return Status{OK: false, Optional: true, Message: trimError(err)}
    }
    return Status{OK: true, Optional: true, Message: "Connected to " + c.bucket.Bucket()}
}

func trimError(err error) string {
    if err == nil {
        return ""
    }
    var netErr interface{ Timeout() bool }
    if errors.As(err, &netErr) && netErr.Timeout() {
        return "timeout"
    }
    if errors.Is(err, context.DeadlineExceeded) {
        return "timeout"
    }
    msg := strings.TrimSpace(err.Error())
    if len(msg) > 120 {
        return msg[:120]
    }
    return msg
}
