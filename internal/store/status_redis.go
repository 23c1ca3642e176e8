package store

import (
    "context"
    "fmt"
    "strconv"
    "time"

    redis "github.com/redis/go-redis/v9"
)

// DefaultTTL keeps finished batch status around long enough for a UI to read it
const DefaultTTL = 24 * time.Hour

// ItemStatus is the per-file hash written for each transition
type ItemStatus struct {
    File        string
    State       string
    Message     string
    Destination string
    Total       int
    Updated     time.Time
}

// JobStatus is the per-batch summary hash
type JobStatus struct {
    State     string
    Succeeded int
    Failed    int
    Skipped   int
    Total     int
    Start     *time.Time
    End       *time.Time
}

type RedisStatus struct {
    client *redis.Client
    keyNS  string
    ttl    time.Duration
}

func NewRedisStatus(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStatus, error) {
    opt, err := redis.ParseURL(redisURL)
    if err != nil { return nil, fmt.Errorf("parse redis url: %w", err) }
    c := redis.NewClient(opt)
    if err := c.Ping(ctx).Err(); err != nil {
        c.Close()
        return nil, fmt.Errorf("redis ping: %w", err)
    }
    if ttl <= 0 { ttl = DefaultTTL }
    return &RedisStatus{client: c, keyNS: "batch", ttl: ttl}, nil
}

func (s *RedisStatus) itemKey(jobID string, index int) string {
    return fmt.Sprintf("%s:%s:item:%d", s.keyNS, jobID, index)
}

func (s *RedisStatus) jobKey(jobID string) string { return fmt.Sprintf("%s:%s:status", s.keyNS, jobID) }

// SetItem overwrites the hash for one item and refreshes its TTL
func (s *RedisStatus) SetItem(ctx context.Context, jobID string, index int, st ItemStatus) error {
    key := s.itemKey(jobID, index)
    pipe := s.client.TxPipeline()
    pipe.HSet(ctx, key, itemToHash(st))
    pipe.Expire(ctx, key, s.ttl)
    _, err := pipe.Exec(ctx)
    return err
}

func (s *RedisStatus) GetItem(ctx context.Context, jobID string, index int) (ItemStatus, bool, error) {
    res, err := s.client.HGetAll(ctx, s.itemKey(jobID, index)).Result()
    if err != nil { return ItemStatus{}, false, err }
    if len(res) == 0 { return ItemStatus{}, false, nil }
    return itemFromHash(res), true, nil
}

// SetJob writes the batch summary
func (s *RedisStatus) SetJob(ctx context.Context, jobID string, st JobStatus) error {
    m := map[string]interface{}{
        "state":     st.State,
        "succeeded": st.Succeeded,
        "failed":    st.Failed,
        "skipped":   st.Skipped,
        "total":     st.Total,
    }
    if st.Start != nil { m["start"] = st.Start.Format(time.RFC3339Nano) }
    if st.End != nil { m["end"] = st.End.Format(time.RFC3339Nano) }
    key := s.jobKey(jobID)
    pipe := s.client.TxPipeline()
    pipe.HSet(ctx, key, m)
    pipe.Expire(ctx, key, s.ttl)
    _, err := pipe.Exec(ctx)
    return err
}

func (s *RedisStatus) GetJob(ctx context.Context, jobID string) (JobStatus, bool, error) {
    res, err := s.client.HGetAll(ctx, s.jobKey(jobID)).Result()
    if err != nil { return JobStatus{}, false, err }
    if len(res) == 0 { return JobStatus{}, false, nil }
    st := JobStatus{
        State:     res["state"],
        Succeeded: atoi(res["succeeded"]),
        Failed:    atoi(res["failed"]),
        Skipped:   atoi(res["skipped"]),
        Total:     atoi(res["total"]),
    }
    if v := res["start"]; v != "" {
        if t, err := time.Parse(time.RFC3339Nano, v); err == nil { st.Start = &t }
    }
    if v := res["end"]; v != "" {
        if t, err := time.Parse(time.RFC3339Nano, v); err == nil { st.End = &t }
    }
    return st, true, nil
}

// Ping satisfies statuscheck.RedisPinger
func (s *RedisStatus) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func (s *RedisStatus) Close() error { return s.client.Close() }

func itemToHash(st ItemStatus) map[string]interface{} {
    m := map[string]interface{}{
        "file":  st.File,
        "state": st.State,
        "total": st.Total,
    }
    if st.Message != "" { m["message"] = st.Message }
    if st.Destination != "" { m["destination"] = st.Destination }
    if !st.Updated.IsZero() { m["updated"] = st.Updated.Format(time.RFC3339Nano) }
    return m
}

func itemFromHash(res map[string]string) ItemStatus {
    st := ItemStatus{
        File:        res["file"],
        State:       res["state"],
        Message:     res["message"],
        Destination: res["destination"],
        Total:       atoi(res["total"]),
    }
    if v := res["updated"]; v != "" {
        // ignore parse error; zero time
        if t, err := time.Parse(time.RFC3339Nano, v); err == nil { st.Updated = t }
    }
    return st
}

func atoi(s string) int { n, _ := strconv.Atoi(s); return n }
