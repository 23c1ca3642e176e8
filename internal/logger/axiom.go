package logger

import (
    "context"
    "encoding/json"
    "fmt"
    "os"
    "sync"
    "sync/atomic"
    "time"

    "github.com/axiomhq/axiom-go/axiom"
    "github.com/axiomhq/axiom-go/axiom/ingest"
    "github.com/rs/zerolog"
)

const (
    axiomBatchSize  = 200
    axiomBufferSize = 1000
)

// axiomWriter forwards zerolog JSON lines at or above min to Axiom
type axiomWriter struct {
    client *axiomClient
    min    zerolog.Level
}

func (w *axiomWriter) Write(p []byte) (int, error) {
    return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel lets zerolog.MultiLevelWriter hand over the level, so filtered
// events are never decoded
func (w *axiomWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
    if level != zerolog.NoLevel && level < w.min {
        return len(p), nil
    }
    var ev map[string]interface{}
    if err := json.Unmarshal(p, &ev); err != nil {
        ev = map[string]interface{}{"message": string(p), "level": level.String()}
    }
    ev["service"] = Service
    if _, ok := ev[ingest.TimestampField]; !ok {
        ev[ingest.TimestampField] = time.Now()
    }
    w.client.Send(axiom.Event(ev))
    return len(p), nil
}

// axiomClient batches events and ingests them from one goroutine
type axiomClient struct {
    client  *axiom.Client
    dataset string
    ch      chan axiom.Event
    dropped atomic.Int64
    wg      sync.WaitGroup
    done    chan struct{}
}

func newAxiomClient(token, orgID, dataset string, flushEvery time.Duration) (*axiomClient, error) {
    if dataset == "" {
        dataset = "dev_" + Service
    }
    opts := []axiom.Option{axiom.SetToken(token)}
    if orgID != "" {
        opts = append(opts, axiom.SetOrganizationID(orgID))
    }
    c, err := axiom.NewClient(opts...)
    if err != nil {
        return nil, err
    }
    if flushEvery <= 0 {
        flushEvery = 10 * time.Second
    }
    ac := &axiomClient{
        client:  c,
        dataset: dataset,
        ch:      make(chan axiom.Event, axiomBufferSize),
        done:    make(chan struct{}),
    }
    ac.wg.Add(1)
    go ac.loop(flushEvery)
    return ac, nil
}

// Send never blocks; events are dropped when the buffer is full
func (a *axiomClient) Send(ev axiom.Event) {
    select {
    case a.ch <- ev:
    default:
        a.dropped.Add(1)
    }
}

func (a *axiomClient) loop(flushEvery time.Duration) {
    defer a.wg.Done()
    ticker := time.NewTicker(flushEvery)
    defer ticker.Stop()

    batch := make([]axiom.Event, 0, axiomBatchSize)
    flush := func() {
        if len(batch) == 0 {
            return
        }
        ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
        _, _ = a.client.IngestEvents(ctx, a.dataset, batch)
        cancel()
        batch = batch[:0]
    }

    for {
        select {
        case <-a.done:
            // drain what is already buffered
            for {
                select {
                case ev := <-a.ch:
                    batch = append(batch, ev)
                    if len(batch) >= axiomBatchSize {
                        flush()
                    }
                default:
                    flush()
                    return
                }
            }
        case <-ticker.C:
            flush()
        case ev := <-a.ch:
            batch = append(batch, ev)
            if len(batch) >= axiomBatchSize {
                flush()
            }
        }
    }
}

// Close flushes buffered events and stops the loop
func (a *axiomClient) Close() error {
    close(a.done)
    a.wg.Wait()
    if n := a.dropped.Load(); n > 0 {
        fmt.Fprintf(os.Stderr, "axiom: dropped %d log events\n", n)
    }
    return nil
}
