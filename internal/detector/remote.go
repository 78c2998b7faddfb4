package detector

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/jennahenricsson-umain/motion-MBD/internal/capture"
	"github.com/jennahenricsson-umain/motion-MBD/internal/landmark"
)

// RemoteDetector sends frames to a landmark service over a WebSocket. Each
// JPEG goes out as a binary message and the service answers with the same
// JSON document the MediaPipe subprocess prints.
type RemoteDetector struct {
	config Config
	log    logrus.FieldLogger

	mu           sync.Mutex
	conn         *websocket.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewRemoteDetector creates a detector for cfg.RemoteURL. The connection is
// opened on first use.
func NewRemoteDetector(cfg Config, log logrus.FieldLogger) *RemoteDetector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RemoteDetector{
		config:       cfg,
		log:          log.WithField("component", "remote-detector"),
		readTimeout:  5 * time.Second,
		writeTimeout: 2 * time.Second,
	}
}

// IsConnected reports whether a connection is open.
func (d *RemoteDetector) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conn != nil
}

// Reconnect drops the current connection, if any, and dials again.
func (d *RemoteDetector) Reconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.connectLocked()
}

func (d *RemoteDetector) connectLocked() error {
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	d.log.WithField("url", d.config.RemoteURL).Info("connecting to landmark service")

	conn, _, err := dialer.Dial(d.config.RemoteURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotConnected, d.config.RemoteURL, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(d.writeTimeout))
		if err != nil {
			d.log.WithError(err).Debug("pong failed")
		}
		return nil
	})

	d.conn = conn
	return nil
}

// Detect encodes frame and asks the service for landmarks.
func (d *RemoteDetector) Detect(frame *gocv.Mat) ([]landmark.Face, error) {
	data, err := capture.EncodeJPEG(frame)
	if err != nil {
		return nil, err
	}
	return d.DetectJPEG(data)
}

// DetectJPEG sends an already encoded frame.
func (d *RemoteDetector) DetectJPEG(data []byte) ([]landmark.Face, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		if err := d.connectLocked(); err != nil {
			return nil, err
		}
	}
	conn := d.conn

	conn.SetWriteDeadline(time.Now().Add(d.writeTimeout))
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		d.dropLocked()
		return nil, fmt.Errorf("send frame: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(d.readTimeout))
	_, message, err := conn.ReadMessage()
	if err != nil {
		d.dropLocked()
		return nil, fmt.Errorf("read landmarks: %w", err)
	}

	return decodeFaces(message, d.config.MaxFaces)
}

func (d *RemoteDetector) dropLocked() {
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
}

// Close closes the connection.
func (d *RemoteDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil
	}
	d.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(d.writeTimeout))
	err := d.conn.Close()
	d.conn = nil
	return err
}
