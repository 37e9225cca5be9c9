package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/matheus3301/wpp-client/internal/api"
	"github.com/matheus3301/wpp-client/internal/bus"
	"github.com/matheus3301/wpp-client/internal/channel"
	"github.com/matheus3301/wpp-client/internal/config"
	"github.com/matheus3301/wpp-client/internal/logging"
	"github.com/matheus3301/wpp-client/internal/present"
	"github.com/matheus3301/wpp-client/internal/profile"
	"github.com/matheus3301/wpp-client/internal/status"
	"go.uber.org/zap"
)

const connectTimeout = 5 * time.Second

type cli struct {
	active  profile.Active
	jsonOut bool
	client  *api.Client
	logger  *zap.Logger
}

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	backendFlag := flag.String("backend", "", "backend URI (overrides profile and environment)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	if args[0] == "config" {
		cmdConfig(args[1:], *profileFlag, *jsonFlag)
		return
	}

	active, err := profile.Load(*profileFlag)
	if err != nil {
		fail(err)
	}
	if *backendFlag != "" {
		active.Settings.BackendURI = *backendFlag
		if err := active.Settings.Validate(); err != nil {
			fail(fmt.Errorf("--backend: %w", err))
		}
	}
	c, err := newCLI(active, *jsonFlag)
	if err != nil {
		fail(err)
	}
	defer func() { _ = c.logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch args[0] {
	case "chats":
		c.cmdChats(ctx, args[1:])
	case "messages":
		c.cmdMessages(ctx, args[1:])
	case "send":
		c.cmdSend(ctx, args[1:])
	case "watch":
		c.cmdWatch(ctx)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: wppctl [--profile <name>] [--backend <uri>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  chats [--filter q]       List conversations")
	fmt.Fprintln(os.Stderr, "  messages <wa_id>         Show a conversation grouped by day")
	fmt.Fprintln(os.Stderr, "  send <wa_id> <text>      Send a text message")
	fmt.Fprintln(os.Stderr, "  watch                    Stream realtime events")
	fmt.Fprintln(os.Stderr, "  config show              Print the resolved profile")
	fmt.Fprintln(os.Stderr, "  config init [--force]    Write a starter config file")
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func newCLI(active profile.Active, jsonOut bool) (*cli, error) {
	if err := profile.EnsureDir(active.Name); err != nil {
		return nil, err
	}
	logger, err := logging.New(profile.LogPath(active.Name), active.Name, logging.Options{Level: active.Settings.LogLevel})
	if err != nil {
		return nil, err
	}
	client, err := api.NewClient(active.Settings.BackendURI, api.WithTimeout(active.Settings.RequestTimeout))
	if err != nil {
		return nil, err
	}
	return &cli{active: active, jsonOut: jsonOut, client: client, logger: logger.Named("wppctl")}, nil
}

func (c *cli) cmdChats(ctx context.Context, args []string) {
	flags := flag.NewFlagSet("chats", flag.ExitOnError)
	filter := flags.String("filter", "", "only chats whose name or wa_id contains this text")
	_ = flags.Parse(args)

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	chats, err := c.client.ListChats(ctx)
	if err != nil {
		fail(err)
	}
	chats = present.FilterChats(chats, *filter)

	if c.jsonOut {
		outputJSON(chats)
		return
	}
	if len(chats) == 0 {
		fmt.Println("No chats available")
		return
	}
	renderChats(os.Stdout, chats)
}

func (c *cli) cmdMessages(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: wppctl messages <wa_id>")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	msgs, err := c.client.ListMessages(ctx, args[0])
	if err != nil {
		fail(err)
	}

	if c.jsonOut {
		outputJSON(msgs)
		return
	}
	renderMessages(os.Stdout, msgs, time.Now(), true)
}

// cmdSend persists the message over REST and re-emits the created message
// on the event channel, the same round trip the interactive client makes.
func (c *cli) cmdSend(ctx context.Context, args []string) {
	flags := flag.NewFlagSet("send", flag.ExitOnError)
	noEmit := flags.Bool("no-emit", false, "skip the sendMessage event on the realtime channel")
	_ = flags.Parse(args)
	rest := flags.Args()
	if len(rest) < 2 {
		fmt.Fprintln(os.Stderr, "usage: wppctl send [--no-emit] <wa_id> <text>")
		os.Exit(1)
	}
	waID := rest[0]
	text := strings.TrimSpace(strings.Join(rest[1:], " "))
	if text == "" {
		fail(errors.New("message text is empty"))
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	created, err := c.client.SendMessage(reqCtx, api.SendRequest{WaID: waID, Text: text, Type: api.TypeText})
	if err != nil {
		fail(err)
	}
	c.logger.Info("message sent", zap.String("wa_id", waID), zap.String("msg_id", created.ID))

	if !*noEmit {
		if err := c.emit(ctx, channel.EventSendMessage, created.Payload()); err != nil {
			fail(fmt.Errorf("message %s stored but not broadcast: %w", created.ID, err))
		}
	}

	if c.jsonOut {
		outputJSON(created)
		return
	}
	fmt.Printf("Sent %s to %s at %s\n", created.ID, waID, created.Timestamp.Format(time.RFC3339))
}

// emit opens a short-lived channel session, sends one event and closes it.
func (c *cli) emit(ctx context.Context, event string, payload any) error {
	b := bus.New()
	changes, unsub := b.Subscribe("conn.", 8)
	defer unsub()

	ch, err := channel.New(c.active.Settings.BackendURI, c.active.Settings.ChannelPath, b, status.NewMachine(b), c.logger)
	if err != nil {
		return err
	}
	runErr := make(chan error, 1)
	go func() { runErr <- ch.Run(ctx) }()
	defer func() {
		_ = ch.Close()
		<-runErr
	}()

	if err := waitConnected(ctx, ch.Connected, changes, runErr, connectTimeout); err != nil {
		return fmt.Errorf("connect %s: %w", ch.URL(), err)
	}

	emitCtx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	return ch.Emit(emitCtx, event, payload)
}

// timeout bounds one REST call or event emit, as configured for the profile.
func (c *cli) timeout() time.Duration {
	if d := c.active.Settings.RequestTimeout; d > 0 {
		return d
	}
	return config.DefaultRequestTimeout
}

// waitConnected blocks until connected reports true. A session that drops
// or a Run loop that exits first is reported as an error, including a clean
// exit, since nothing can be emitted afterwards.
func waitConnected(ctx context.Context, connected func() bool, changes <-chan bus.Event, runErr chan error, limit time.Duration) error {
	timeout := time.After(limit)
	for !connected() {
		select {
		case evt := <-changes:
			change, ok := evt.Payload.(status.StatusChange)
			if !ok || change.To != status.Reconnecting {
				continue
			}
			if change.Err != nil {
				return change.Err
			}
			return errors.New("connection lost")
		case err := <-runErr:
			runErr <- err
			if err == nil {
				return channel.ErrNotConnected
			}
			return err
		case <-timeout:
			return fmt.Errorf("timed out after %s", limit)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (c *cli) cmdWatch(ctx context.Context) {
	b := bus.New()
	events, unsub := b.Subscribe("", 256)
	defer unsub()

	ch, err := channel.New(c.active.Settings.BackendURI, c.active.Settings.ChannelPath, b, status.NewMachine(b), c.logger)
	if err != nil {
		fail(err)
	}
	runErr := make(chan error, 1)
	go func() { runErr <- ch.Run(ctx) }()

	if !c.jsonOut {
		fmt.Fprintf(os.Stderr, "watching %s (Ctrl-C to stop)\n", ch.URL())
	}
	for {
		select {
		case evt := <-events:
			if c.jsonOut {
				outputJSONLine(evt)
				continue
			}
			renderEvent(os.Stdout, evt, true)
		case err := <-runErr:
			if err != nil {
				fail(err)
			}
			return
		}
	}
}

func cmdConfig(args []string, profileFlag string, jsonOut bool) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: wppctl config <show|init>")
		os.Exit(1)
	}
	switch args[0] {
	case "show":
		active, err := profile.Load(profileFlag)
		if err != nil {
			fail(err)
		}
		if jsonOut {
			outputJSON(map[string]any{"profile": active.Name, "settings": active.Settings})
			return
		}
		fmt.Printf("# profile %q (config file %s)\n", active.Name, profile.ConfigPath())
		if err := toml.NewEncoder(os.Stdout).Encode(active.Settings); err != nil {
			fail(err)
		}
	case "init":
		flags := flag.NewFlagSet("config init", flag.ExitOnError)
		force := flags.Bool("force", false, "overwrite an existing config file")
		_ = flags.Parse(args[1:])

		name := profileFlag
		if name == "" {
			name = profile.DefaultName
		}
		if err := profile.ValidateName(name); err != nil {
			fail(err)
		}
		path := profile.ConfigPath()
		if err := initConfig(path, name, *force); err != nil {
			fail(err)
		}
		fmt.Printf("Wrote %s (default profile %q)\n", path, name)
	default:
		fmt.Fprintf(os.Stderr, "unknown config subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func initConfig(path, name string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return config.Save(path, config.Starter(name))
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}

func outputJSONLine(evt bus.Event) {
	line := struct {
		Event     string    `json:"event"`
		Timestamp time.Time `json:"timestamp"`
		Payload   any       `json:"payload,omitempty"`
	}{evt.Kind, evt.Timestamp, evt.Payload}
	if change, ok := evt.Payload.(status.StatusChange); ok {
		line.Payload = map[string]string{"from": string(change.From), "to": string(change.To)}
	}
	if err := json.NewEncoder(os.Stdout).Encode(line); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
