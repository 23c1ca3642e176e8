package spooler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor maps "bin arg1 arg2" prefixes to canned output.
type mockExecutor struct {
	bins    map[string]bool
	outputs map[string]string
	fail    map[string]bool
	calls   []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.bins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	key := name + " " + strings.Join(args, " ")
	m.calls = append(m.calls, key)
	if m.fail[name] {
		return nil, errors.New("command failed: " + key)
	}
	return []byte(m.outputs[name]), nil
}

func TestSubmitArguments(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "color simplex",
			opts: Options{Color: true},
			want: "lp -d Office -t report.docx -o ColorModel=Color -o FFColorMode=Color -- /tmp/a.pdf",
		},
		{
			name: "gray duplex",
			opts: Options{Duplex: true},
			want: "lp -d Office -t report.docx -o ColorModel=Gray -o FFColorMode=Gray -o sides=two-sided-long-edge -- /tmp/a.pdf",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := &mockExecutor{outputs: map[string]string{"lp": "request id is Office-42 (1 file(s))\n"}}
			id, err := newCUPS(Config{}, ex).Submit(context.Background(), "Office", "/tmp/a.pdf", "report.docx", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, "Office-42", id)
			assert.Equal(t, []string{tt.want}, ex.calls)
		})
	}
}

func TestSubmitErrors(t *testing.T) {
	ex := &mockExecutor{fail: map[string]bool{"lp": true}}
	c := newCUPS(Config{}, ex)

	_, err := c.Submit(context.Background(), "Office", "/tmp/a.pdf", "a.pdf", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "submit to Office")

	_, err = c.Submit(context.Background(), "", "/tmp/a.pdf", "a.pdf", Options{})
	assert.Error(t, err)
}

func TestPrinters(t *testing.T) {
	ex := &mockExecutor{outputs: map[string]string{"lpstat": "Office_Laser\nPDF\n\n"}}
	printers, err := newCUPS(Config{}, ex).Printers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Office_Laser", "PDF"}, printers)

	_, err = newCUPS(Config{}, &mockExecutor{}).Printers(context.Background())
	assert.ErrorIs(t, err, ErrNoPrinters)
}

func TestDefault(t *testing.T) {
	ex := &mockExecutor{outputs: map[string]string{"lpstat": "system default destination: Office_Laser\n"}}
	name, err := newCUPS(Config{}, ex).Default(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Office_Laser", name)

	ex = &mockExecutor{outputs: map[string]string{"lpstat": "no system default destination\n"}}
	name, err = newCUPS(Config{}, ex).Default(context.Background())
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestAvailable(t *testing.T) {
	assert.NoError(t, newCUPS(Config{}, &mockExecutor{bins: map[string]bool{"lp": true}}).Available())
	assert.Error(t, newCUPS(Config{LPBinary: "lp-custom"}, &mockExecutor{bins: map[string]bool{"lp": true}}).Available())
}

func TestPreferred(t *testing.T) {
	printers := []string{"A", "B", "C"}
	assert.Equal(t, "B", Preferred(printers, "B", "C"))
	assert.Equal(t, "C", Preferred(printers, "gone", "C"))
	assert.Equal(t, "A", Preferred(printers, "", ""))
	assert.Equal(t, "", Preferred(nil, "B", "C"))
}
