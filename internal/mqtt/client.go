package mqtt

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

const (
	qos        = byte(1)
	pubTimeout = 5 * time.Second
	subTimeout = 5 * time.Second
)

// Client wraps a paho client for one vehicle.
type Client struct {
	client mqtt.Client
	topics Topics
	logger *logrus.Logger
}

// brokerURL maps the user-facing scheme to the one paho dials. secure is true
// for the TLS schemes.
func brokerURL(u *url.URL) (broker string, secure bool, err error) {
	b := *u
	b.User = nil
	switch u.Scheme {
	case "ws":
	case "wss":
		secure = true
	case "mqtt", "tcp":
		b.Scheme = "tcp"
	case "mqtts", "ssl":
		b.Scheme = "ssl"
		secure = true
	default:
		return "", false, fmt.Errorf("unsupported protocol scheme: %s (supported: ws, wss, mqtt, mqtts)", u.Scheme)
	}
	return b.String(), secure, nil
}

// NewClient connects to the broker at mqttURL. Credentials may be embedded
// in the URL. The availability topic carries a retained "offline" will.
func NewClient(mqttURL, deviceID string, insecureTLS bool, logger *logrus.Logger) (*Client, error) {
	parsed, err := url.Parse(mqttURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT URL: %w", err)
	}
	broker, secure, err := brokerURL(parsed)
	if err != nil {
		return nil, err
	}

	topics := NewTopics(deviceID)
	clientID := fmt.Sprintf("obd-diag-%s", deviceID)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	if secure {
		opts.SetTLSConfig(&tls.Config{
			InsecureSkipVerify: insecureTLS, //nolint:gosec // opt-in for self-signed brokers
			MinVersion:         tls.VersionTLS12,
		})
	}
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(1 * time.Second)
	opts.SetConnectTimeout(5 * time.Second)
	opts.SetMaxReconnectInterval(10 * time.Second)
	opts.SetWill(topics.Availability(), "offline", qos, true)

	if parsed.User != nil {
		opts.SetUsername(parsed.User.Username())
		password, _ := parsed.User.Password()
		opts.SetPassword(password)
	}

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.WithError(err).Warn("MQTT connection lost")
	})
	opts.SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
		logger.Debug("MQTT reconnecting...")
	})

	firstConnect := true
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		if firstConnect {
			firstConnect = false
			return
		}
		logger.Info("MQTT reconnected")
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	logger.WithFields(logrus.Fields{
		"broker":    cleanURL(mqttURL),
		"protocol":  parsed.Scheme,
		"client_id": clientID,
	}).Info("MQTT client connected")

	return &Client{client: client, topics: topics, logger: logger}, nil
}

// Publish sends payload with QoS 1, waiting at most pubTimeout.
func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(pubTimeout) {
		return fmt.Errorf("publish to topic %s timed out after %s", topic, pubTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}

	c.logger.WithFields(logrus.Fields{
		"topic":    topic,
		"size":     len(payload),
		"retained": retained,
	}).Debug("Published MQTT message")
	return nil
}

// Subscribe registers handler for topic.
func (c *Client) Subscribe(topic string, handler mqtt.MessageHandler) error {
	token := c.client.Subscribe(topic, qos, handler)
	if !token.WaitTimeout(subTimeout) {
		return fmt.Errorf("subscribe to topic %s timed out after %s", topic, subTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, err)
	}
	c.logger.WithField("topic", topic).Debug("Subscribed to MQTT topic")
	return nil
}

// IsConnected reports the paho connection state.
func (c *Client) IsConnected() bool { return c.client.IsConnected() }

// Topics returns the topic layout for this client's device.
func (c *Client) Topics() Topics { return c.topics }

// PublishAvailability publishes the retained online/offline flag.
func (c *Client) PublishAvailability(online bool) error {
	status := "offline"
	if online {
		status = "online"
	}
	return c.Publish(c.topics.Availability(), []byte(status), true)
}

// Disconnect marks the device offline and closes the connection.
func (c *Client) Disconnect(quiesce uint) {
	if err := c.PublishAvailability(false); err != nil {
		c.logger.WithError(err).Debug("Failed to publish offline availability")
	}
	c.client.Disconnect(quiesce)
	c.logger.Debug("MQTT client disconnected")
}

// cleanURL masks credentials for logging.
func cleanURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if parsed.User != nil {
		parsed.User = url.UserPassword("***", "***")
	}
	return parsed.String()
}

// BuildCleanTopic joins parts into a lower-case topic without wildcards or
// spaces.
func BuildCleanTopic(parts ...string) string {
	r := strings.NewReplacer(" ", "_", "+", "plus", "#", "hash")
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		clean = append(clean, strings.ToLower(r.Replace(p)))
	}
	return strings.Join(clean, "/")
}
