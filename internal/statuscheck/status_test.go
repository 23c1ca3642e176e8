package statuscheck

import (
    "context"
    "errors"
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
)

type fakeOffice struct {
    version string
    err     error
}

func (f fakeOffice) CheckInstallation(context.Context) (string, error) { return f.version, f.err }

type fakeSpooler struct {
    missing  error
    printers []string
    def      string
}

func (f fakeSpooler) Available() error { return f.missing }
func (f fakeSpooler) Printers(context.Context) ([]string, error) {
    if len(f.printers) == 0 {
        return nil, errors.New("no printers configured")
    }
    return f.printers, nil
}
func (f fakeSpooler) Default(context.Context) (string, error) { return f.def, nil }

type fakeRedis struct{ err error }

func (f fakeRedis) Ping(context.Context) error { return f.err }

type fakeBucket struct{ err error }

func (fakeBucket) Bucket() string { return "exports" }
func (f fakeBucket) HeadBucket(context.Context) error { return f.err }

func TestSummaryAllHealthy(t *testing.T) {
    c := New(Options{
        Office:  fakeOffice{version: "LibreOffice 7.6.4.1"},
        Spooler: fakeSpooler{printers: []string{"A", "B"}, def: "B"},
        Redis:   fakeRedis{},
        Bucket:  fakeBucket{},
    })
    s := c.Summary(context.Background())

    assert.Equal(t, Status{OK: true, Message: "LibreOffice 7.6.4.1"}, s.LibreOffice)
    assert.Equal(t, "2 printer(s), default B", s.Printing.Message)
    assert.True(t, s.Redis.OK)
    assert.Equal(t, "Connected to exports", s.S3.Message)
    assert.True(t, s.Ready())
}

func TestSummaryOptionalFailuresDoNotBlock(t *testing.T) {
    c := New(Options{
        Office:  fakeOffice{version: "LibreOffice 24.2"},
        Spooler: fakeSpooler{missing: errors.New("lp not found")},
    })
    s := c.Summary(context.Background())

    assert.False(t, s.Printing.OK)
    assert.Equal(t, "lp not found", s.Printing.Message)
    assert.Equal(t, "not configured", s.Redis.Message)
    assert.Equal(t, "Bucket not configured", s.S3.Message)
    assert.True(t, s.Ready())
}

func TestSummaryMissingConverterIsNotReady(t *testing.T) {
    s := New(Options{Office: fakeOffice{err: errors.New("soffice not found")}}).Summary(context.Background())
    assert.False(t, s.LibreOffice.OK)
    assert.False(t, s.Ready())

    names := make([]string, 0, 4)
    for _, e := range s.Entries() {
        names = append(names, e.Name)
    }
    assert.Equal(t, []string{"LibreOffice", "Printing", "Redis", "S3"}, names)
}

func TestTrimError(t *testing.T) {
    assert.Equal(t, "", trimError(nil))
    assert.Equal(t, "timeout", trimError(context.DeadlineExceeded))
    assert.Len(t, trimError(errors.New(strings.Repeat("x", 300))), 120)
}
