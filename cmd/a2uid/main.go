// Command a2uid runs a standalone A2UI runtime over HTTP: the SSE transport
// of spec §4.8 and the A2A transport of spec §4.9, both backed by one
// session and a registered standard catalog. (The in-process local
// transport in transport/local has no HTTP surface; it is for embedding a
// session directly in another Go process, not this binary.)
//
// Grounded on cellorg/cmd/orchestrator/main.go's wiring idiom — config
// source priority (flag path, then default file, then built-in defaults),
// a cancellable root context watched by the shutdown select, and a
// signal.Notify/select shutdown with a bounded drain timeout — narrowed
// from GOX's broker/support/deployer trio to this runtime's session +
// transport servers.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tenzoki/a2ui-go"
	"github.com/tenzoki/a2ui-go/catalog"
	"github.com/tenzoki/a2ui-go/envelope"
	"github.com/tenzoki/a2ui-go/internal/config"
	"github.com/tenzoki/a2ui-go/internal/logx"
	"github.com/tenzoki/a2ui-go/session"
	"github.com/tenzoki/a2ui-go/transport/a2a"
	"github.com/tenzoki/a2ui-go/transport/sse"
)

// standardModuleTypes is the component-type allowlist for the built-in
// standard catalog (spec §4.5 "standard catalog"; the runtime validates
// against this allowlist but does not itself render any of these types,
// spec §1).
var standardModuleTypes = []string{
	"Text", "Button", "Column", "Row", "Card", "Image",
	"TextInput", "Checkbox", "Slider", "DateTimePicker", "Choice",
}

func main() {
	configPath := flag.String("config", "", "path to a runtime config YAML file (defaults built in if omitted)")
	addr := flag.String("addr", ":8080", "HTTP listen address for the SSE and A2A endpoints")
	version := flag.String("version", "v0_9", "protocol version this instance speaks: v0_8 or v0_9")
	dev := flag.Bool("dev", false, "use a human-readable development logger instead of JSON production logging")
	flag.Parse()

	protoVersion := a2ui.ProtocolVersion(*version)
	if !protoVersion.IsValid() {
		fmt.Fprintf(os.Stderr, "a2uid: invalid -version %q, must be v0_8 or v0_9\n", *version)
		os.Exit(1)
	}

	log, err := logx.New(*dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "a2uid: failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var cfg config.Runtime
	var cfgSource string
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal("failed to load config", zap.String("path", *configPath), zap.Error(err))
		}
		cfgSource = *configPath
	} else if _, statErr := os.Stat("config/a2uid.yaml"); statErr == nil {
		cfg, err = config.Load("config/a2uid.yaml")
		if err != nil {
			log.Warn("config/a2uid.yaml present but failed to parse, using defaults", zap.Error(err))
			cfg = config.Default()
			cfgSource = "built-in defaults (config/a2uid.yaml failed to parse)"
		} else {
			cfgSource = "config/a2uid.yaml"
		}
	} else {
		cfg = config.Default()
		cfgSource = "built-in defaults"
	}
	log.Info("starting a2uid", zap.String("config_source", cfgSource), logx.ProtocolVersion(string(protoVersion)))

	registry := catalog.NewRegistry()
	standardID := a2ui.StandardCatalogIDV0_8
	if protoVersion == a2ui.V0_9 {
		standardID = a2ui.StandardCatalogIDV0_9
	}
	registry.Register(catalog.Module{ID: standardID, Types: standardModuleTypes})

	sess := session.New(registry, cfg.Limits)
	sess.SetLogger(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sseRegistry := sse.NewRegistry(cfg.EventRingSize)
	sseRegistry.SetLogger(log)
	sseServer := sse.NewServer(sseRegistry, "", cfg.RetryMS, cfg.HeartbeatInterval)
	sseServer.OnEvent = func(sessionID string, evBody map[string]interface{}) error {
		return applyInboundEvent(sess, cfg.Limits, evBody)
	}

	card := a2a.AgentCard{
		Name:        "a2uid",
		Description: "standalone A2UI runtime",
		URL:         "http://" + hostPart(*addr),
		Capabilities: a2a.AgentCapabilities{
			Streaming:  true,
			Extensions: []a2a.AgentExtension{{URI: a2ui.ExtensionURI(protoVersion), Required: true}},
		},
	}
	a2aServer := a2a.NewServer(card, protoVersion, "", cfg.EventRingSize, cfg.RetryMS, cfg.HeartbeatInterval, cfg.Limits)
	a2aServer.OnMessage = func(taskID string, msg a2a.Message) error {
		envelopes, errs := a2a.ExtractEnvelopes(msg, cfg.Limits)
		for _, perr := range errs {
			log.Warn("a2a message carried an invalid envelope", zap.String("task_id", taskID), zap.String("error_type", string(perr.Type)))
		}
		for _, env := range envelopes {
			if perr := sess.ApplyEnvelope(env); perr != nil {
				return perr
			}
		}
		return nil
	}

	mux := http.NewServeMux()
	for path, handler := range sseServer.Handlers() {
		mux.Handle(path, handler)
	}
	for path, handler := range a2aServer.Handlers() {
		mux.Handle(path, handler)
	}

	httpServer := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		log.Info("http+sse and a2a endpoints listening", zap.String("addr", *addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		log.Info("context cancelled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown did not complete cleanly", zap.Error(err))
	}
	cancel()
	log.Info("a2uid stopped")
}

// applyInboundEvent decodes a raw POST /events body as a userAction/action
// envelope and applies it to the session (spec §4.8 "hands off to a
// configured handler").
func applyInboundEvent(sess *session.Session, limits config.Limits, body map[string]interface{}) error {
	if _, ok := body["userAction"]; !ok {
		if _, ok := body["action"]; !ok {
			return fmt.Errorf("a2uid: event body is not a userAction/action envelope")
		}
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	env, perr := envelope.Parse(raw, limits)
	if perr != nil {
		return perr
	}
	if applyPerr := sess.ApplyEnvelope(env); applyPerr != nil {
		return applyPerr
	}
	return nil
}

func hostPart(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
