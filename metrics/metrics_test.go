package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	def "github.com/lovelydayss/miniredis/interface"
	"github.com/lovelydayss/miniredis/log"
)

type stats struct {
	len, capacity int
}

func (s *stats) Len() int      { return s.len }
func (s *stats) Capacity() int { return s.capacity }

func TestMetrics(t *testing.T) {
	store := &stats{len: 3, capacity: 8}
	m := NewMetrics(store)

	m.CommandProcessed(def.CmdTypeSet)
	m.CommandProcessed(def.CmdTypeSet)
	m.CommandProcessed(def.CmdTypeGet)
	m.CommandFailed(ErrKindProtocol)
	m.ConnOpened()
	m.ConnOpened()
	m.ConnClosed()

	expected := `
# HELP miniredis_commands_total Commands executed, by command name.
# TYPE miniredis_commands_total counter
miniredis_commands_total{command="get"} 1
miniredis_commands_total{command="set"} 2
# HELP miniredis_command_errors_total Requests answered with an error reply, by error kind.
# TYPE miniredis_command_errors_total counter
miniredis_command_errors_total{kind="protocol"} 1
# HELP miniredis_connections_active Currently open client connections.
# TYPE miniredis_connections_active gauge
miniredis_connections_active 1
# HELP miniredis_connections_total Client connections accepted since start.
# TYPE miniredis_connections_total counter
miniredis_connections_total 2
# HELP miniredis_store_keys Keys held by the store, including expired keys not yet evicted.
# TYPE miniredis_store_keys gauge
miniredis_store_keys 3
# HELP miniredis_store_capacity Slots allocated by the store hash table.
# TYPE miniredis_store_capacity gauge
miniredis_store_capacity 8
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"miniredis_commands_total",
		"miniredis_command_errors_total",
		"miniredis_connections_active",
		"miniredis_connections_total",
		"miniredis_store_keys",
		"miniredis_store_capacity",
	)
	if err != nil {
		t.Error(err)
	}

	// GaugeFunc 每次采集时读取最新值
	store.len = 5
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(`
# HELP miniredis_store_keys Keys held by the store, including expired keys not yet evicted.
# TYPE miniredis_store_keys gauge
miniredis_store_keys 5
`), "miniredis_store_keys"); err != nil {
		t.Error(err)
	}
}

func TestExporter(t *testing.T) {
	m := NewMetrics(&stats{})
	m.CommandProcessed(def.CmdTypePing)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	exporter := NewExporter(m, log.NewNop())
	errc := make(chan error, 1)
	go func() {
		errc <- exporter.Serve(listener)
	}()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + listener.Addr().String() + "/metrics")
	if err != nil {
		t.Fatalf("get /metrics: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `miniredis_commands_total{command="ping"} 1`) {
		t.Errorf("body missing ping counter:\n%s", body)
	}
	if !strings.Contains(string(body), "go_goroutines") {
		t.Error("body missing go collector metrics")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := exporter.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := <-errc; err != nil {
		t.Errorf("Serve returned %v", err)
	}
}
