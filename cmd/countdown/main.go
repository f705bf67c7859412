// Command countdown drives a 5x5 LED matrix countdown timer with two buttons
// and a speaker, and publishes countdown events to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sweeney/countdown/internal/board"
	"github.com/sweeney/countdown/internal/display"
	"github.com/sweeney/countdown/internal/gpio"
	"github.com/sweeney/countdown/internal/irq"
	"github.com/sweeney/countdown/internal/logic"
	"github.com/sweeney/countdown/internal/mqtt"
	"github.com/sweeney/countdown/internal/status"
	"github.com/sweeney/countdown/internal/timer"
	"github.com/sweeney/countdown/internal/tone"
	"github.com/sweeney/countdown/internal/web"
)

// statusInterval is how often the status tracker is refreshed from the board.
const statusInterval = time.Second

type options struct {
	chip          string
	pinA, pinB    int
	refresh       time.Duration
	levels        int
	brightness    int
	lampTest      time.Duration
	tonePin       string
	toneHz        int
	cancelOnReset bool
	broker        string
	heartbeat     time.Duration
	httpAddr      string
	wsBroker      string
	printState    bool
}

func main() {
	var o options
	flag.StringVar(&o.chip, "chip", "gpiochip0", "GPIO character device")
	flag.IntVar(&o.pinA, "pin-a", gpio.DefaultPinA, "BCM pin number for button A (start/stop)")
	flag.IntVar(&o.pinB, "pin-b", gpio.DefaultPinB, "BCM pin number for button B (reset)")
	flag.DurationVar(&o.refresh, "refresh", 500*time.Microsecond, "Display refresh interval per duty slice")
	flag.IntVar(&o.levels, "levels", 4, "Greyscale levels per pixel")
	flag.IntVar(&o.brightness, "brightness", 0, "Brightness of lit pixels, 1..levels (0 for full)")
	flag.DurationVar(&o.lampTest, "lamp-test", 0, "Show each die face for this long at startup (0 to skip)")
	flag.StringVar(&o.tonePin, "tone-pin", tone.DefaultPin, "Speaker PWM pin name")
	flag.IntVar(&o.toneHz, "tone-hz", tone.DefaultFrequencyHz, "Alarm tone frequency in Hz")
	flag.BoolVar(&o.cancelOnReset, "cancel-alarm-on-reset", true, "Reset also stops an alarm in progress")
	flag.StringVar(&o.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.DurationVar(&o.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.StringVar(&o.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.StringVar(&o.wsBroker, "ws-broker", "=broker", `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)
	flag.BoolVar(&o.printState, "print-state", false, "Print current button levels and exit")
	debug := flag.Bool("debug", false, "Development logging at debug level")

	flag.Parse()

	log, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	o.wsBroker = resolveWSBroker(o.wsBroker, o.broker, log)
	if err := run(o, log); err != nil {
		log.Fatal("fatal", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// validate rejects settings that would only fail once the device is running.
func (o options) validate() error {
	if o.refresh <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %v", o.refresh)
	}
	if o.levels < 1 {
		return fmt.Errorf("levels must be at least 1, got %d", o.levels)
	}
	if o.lampTest < 0 {
		return fmt.Errorf("lamp test step must not be negative, got %v", o.lampTest)
	}
	return nil
}

func run(o options, log *zap.Logger) error {
	if o.printState {
		return printState(os.Stdout, o)
	}
	if err := o.validate(); err != nil {
		return err
	}

	ctrl := irq.NewController()
	reg := board.NewRegistry(ctrl)

	matrix, err := display.NewRealMatrix(o.chip, display.DefaultRowPins, display.DefaultColPins)
	if err != nil {
		return fmt.Errorf("init display: %w", err)
	}
	defer closeLogged(log, "display", matrix)
	mux := display.NewMultiplexer(matrix, o.levels, log)
	if o.lampTest > 0 {
		log.Info("lamp test", zap.Duration("step", o.lampTest))
		if err := lampTest(context.Background(), mux, o.refresh, o.lampTest); err != nil {
			return fmt.Errorf("lamp test: %w", err)
		}
	}
	reg.SetDisplay(mux)

	buttons, err := gpio.NewRealChannels(o.chip, func() { ctrl.Raise(irq.Buttons) })
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	defer closeLogged(log, "buttons", buttons)
	a, err := buttons.Configure(o.pinA, gpio.EdgeFalling)
	if err != nil {
		return fmt.Errorf("configure button A: %w", err)
	}
	b, err := buttons.Configure(o.pinB, gpio.EdgeFalling)
	if err != nil {
		return fmt.Errorf("configure button B: %w", err)
	}
	reg.SetButtons(buttons, a, b)

	speaker, err := tone.NewRealDriver(o.tonePin, o.toneHz)
	if err != nil {
		return fmt.Errorf("init tone: %w", err)
	}
	defer closeLogged(log, "tone", speaker)
	reg.SetTone(speaker)

	for _, id := range []logic.TimerID{logic.TimerTick, logic.TimerTone, logic.TimerBlink} {
		src := board.TimerSource(id)
		t := timer.NewReal(func() { ctrl.Raise(src) })
		defer t.Disarm()
		reg.SetTimer(id, t)
	}

	cfg := logic.DefaultConfig()
	cfg.CancelAlarmOnReset = o.cancelOnReset
	dev, err := board.New(reg, cfg, log, board.WithBrightness(o.brightness))
	if err != nil {
		return fmt.Errorf("init board: %w", err)
	}

	publisher, err := mqtt.NewRealPublisher(o.broker, "countdown", log)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Tracker first so the STARTUP snapshot has config and network.
	tracker := status.NewTracker(time.Now(), status.Config{
		Initial:            cfg.Initial,
		RefreshUs:          o.refresh.Microseconds(),
		Levels:             o.levels,
		ToneHz:             o.toneHz,
		HeartbeatMs:        o.heartbeat.Milliseconds(),
		CancelAlarmOnReset: cfg.CancelAlarmOnReset,
		Broker:             o.broker,
		HTTPPort:           o.httpAddr,
		WSBroker:           o.wsBroker,
	})
	if info := readNetworkInfo(); info != nil {
		tracker.SetNetwork(info)
	}
	refreshTracker(tracker, dev, publisher)

	snap := tracker.Snapshot()
	startup := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      mqtt.SystemStartup,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, mqtt.SystemStartup, ""),
	}
	if err := publisher.PublishSystem(startup); err != nil {
		log.Warn("failed to publish startup event", zap.Error(err))
	} else {
		log.Info("published startup event")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return dev.Run(gctx, o.refresh)
	})

	if o.httpAddr != "" {
		ln, err := net.Listen("tcp", o.httpAddr)
		if err != nil {
			cancel()
			_ = g.Wait()
			return fmt.Errorf("http listen: %w", err)
		}
		srv := web.New(o.httpAddr, tracker, log)
		g.Go(func() error {
			return srv.Run(gctx, ln)
		})
		log.Info("http status server listening", zap.String("addr", o.httpAddr))
	}

	statusTicker := time.NewTicker(statusInterval)
	defer statusTicker.Stop()
	var heartbeat <-chan time.Time
	if o.heartbeat > 0 {
		hb := time.NewTicker(o.heartbeat)
		defer hb.Stop()
		heartbeat = hb.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	log.Info("started",
		zap.Duration("refresh", o.refresh),
		zap.Int("levels", o.levels),
		zap.String("broker", o.broker),
		zap.Duration("heartbeat", o.heartbeat),
		zap.Bool("cancel_alarm_on_reset", o.cancelOnReset),
	)

	g.Go(func() error {
		defer cancel()
		return runLoop(gctx, dev, publisher, publisher, tracker, statusTicker.C, heartbeat, sigCh, time.Now, log)
	})
	return g.Wait()
}

// countdown is the part of the board the event loop reads.
type countdown interface {
	Events() <-chan logic.Event
	Snapshot() board.Snapshot
}

// runLoop forwards announced events to MQTT and keeps the status tracker
// current until a signal arrives or ctx is done.
func runLoop(ctx context.Context, dev countdown, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, statusTick, heartbeat <-chan time.Time, sig <-chan os.Signal, now func() time.Time, log *zap.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case s := <-sig:
			log.Info("shutting down", zap.Stringer("signal", s))
			// Flush whatever the handlers announced before the signal.
			drainEvents(dev, publisher, log)

			reason := signalName(s)
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     mqtt.SystemShutdown,
				Reason:    reason,
				Retained:  true,
			}
			if tracker != nil {
				refreshTracker(tracker, dev, mqttStatus)
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), mqtt.SystemShutdown, reason)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Warn("failed to publish shutdown event", zap.Error(err))
			} else {
				log.Info("published shutdown event")
			}
			return nil

		case ev := <-dev.Events():
			publishEvent(ev, publisher, log)
			if tracker != nil {
				refreshTracker(tracker, dev, mqttStatus)
			}

		case <-statusTick:
			if tracker != nil {
				refreshTracker(tracker, dev, mqttStatus)
			}

		case <-heartbeat:
			hb := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     mqtt.SystemHeartbeat,
			}
			if tracker != nil {
				// Refresh network info for heartbeat
				if info := readNetworkInfo(); info != nil {
					tracker.SetNetwork(info)
				}
				refreshTracker(tracker, dev, mqttStatus)
				snap := tracker.Snapshot()
				hb.RawPayload = status.FormatStatusEvent(snap, mqtt.SystemHeartbeat, "")
				log.Info("heartbeat",
					zap.Duration("uptime", snap.Uptime()),
					zap.Uint32("remaining", snap.Countdown.Remaining),
					zap.Int("started", snap.Counts.Started),
					zap.Int("alarms", snap.Counts.Alarms),
				)
			}
			if err := publisher.PublishSystem(hb); err != nil {
				log.Warn("heartbeat publish error", zap.Error(err))
			}
		}
	}
}

func publishEvent(ev logic.Event, publisher mqtt.Publisher, log *zap.Logger) {
	log.Info("event",
		zap.String("event", string(ev.Type)),
		zap.Uint32("remaining", ev.Remaining),
		zap.Bool("running", ev.Running),
		zap.String("phase", string(ev.Phase)),
	)
	if err := publisher.Publish(ev); err != nil {
		// A lost announcement never stops the countdown.
		log.Warn("publish error", zap.Error(err))
	}
}

func drainEvents(dev countdown, publisher mqtt.Publisher, log *zap.Logger) {
	for {
		select {
		case ev := <-dev.Events():
			publishEvent(ev, publisher, log)
		default:
			return
		}
	}
}

func refreshTracker(tracker *status.Tracker, dev countdown, mqttStatus mqtt.ConnectionStatus) {
	snap := dev.Snapshot()
	tracker.Update(snap.State, snap.Counts, status.Diagnostics{
		ToneErrors:    snap.ToneErrors,
		DisplayErrors: snap.DisplayErrors,
		Dropped:       snap.Dropped,
	})
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// printState reports the current level of both buttons.
func printState(w io.Writer, o options) error {
	buttons, err := gpio.NewRealChannels(o.chip, nil)
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	defer buttons.Close()

	a, err := buttons.Configure(o.pinA, gpio.EdgeFalling)
	if err != nil {
		return fmt.Errorf("configure button A: %w", err)
	}
	b, err := buttons.Configure(o.pinB, gpio.EdgeFalling)
	if err != nil {
		return fmt.Errorf("configure button B: %w", err)
	}

	pa, err := buttons.Pressed(a)
	if err != nil {
		return fmt.Errorf("read button A: %w", err)
	}
	pb, err := buttons.Pressed(b)
	if err != nil {
		return fmt.Errorf("read button B: %w", err)
	}
	fmt.Fprintf(w, "A: %s, B: %s\n", pressedString(pa), pressedString(pb))
	return nil
}

func pressedString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}

func closeLogged(log *zap.Logger, what string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Warn("close failed", zap.String("what", what), zap.Error(err))
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; "off" disables.
func resolveWSBroker(ws, broker string, log *zap.Logger) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Warn("ws-broker: cannot parse broker", zap.String("broker", broker), zap.Error(err))
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
