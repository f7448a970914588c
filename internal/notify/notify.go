package notify

import (
	"sync"

	"github.com/godbus/dbus/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	method     = busName + ".Notify"

	defaultTimeoutMs = 5000
)

// Notifier shows a desktop notification
type Notifier interface {
	Notify(summary, body string) error
}

// Caller issues a D-Bus method call. *dbus.Object satisfies it.
type Caller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// DBusNotifier sends notifications through the freedesktop notification
// service on the session bus
type DBusNotifier struct {
	mu      sync.Mutex
	appName string
	icon    string
	obj     Caller
}

// NewDBusNotifier connects to the session bus
func NewDBusNotifier(appName string) (*DBusNotifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to session bus")
	}
	return NewDBusNotifierWithCaller(appName, conn.Object(busName, objectPath)), nil
}

// NewDBusNotifierWithCaller builds a notifier on an existing bus object
func NewDBusNotifierWithCaller(appName string, obj Caller) *DBusNotifier {
	return &DBusNotifier{appName: appName, icon: "dialog-information", obj: obj}
}

func (n *DBusNotifier) Notify(summary, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	call := n.obj.Call(method, 0,
		n.appName,
		uint32(0),
		n.icon,
		summary,
		body,
		[]string{},
		map[string]dbus.Variant{},
		int32(defaultTimeoutMs),
	)
	if call.Err != nil {
		return errors.Wrap(call.Err, "failed to send notification")
	}
	return nil
}

// LogNotifier writes notifications to a logger. It is used when no
// notification service is reachable or notifications are disabled.
type LogNotifier struct {
	Log logrus.FieldLogger
}

func (n *LogNotifier) Notify(summary, body string) error {
	n.Log.WithField("summary", summary).Info(body)
	return nil
}

// New returns a D-Bus notifier when enabled and reachable, otherwise a
// LogNotifier
func New(enabled bool, appName string, log logrus.FieldLogger) Notifier {
	if !enabled {
		return &LogNotifier{Log: log}
	}
	n, err := NewDBusNotifier(appName)
	if err != nil {
		log.WithError(err).Warn("Desktop notifications unavailable, falling back to log")
		return &LogNotifier{Log: log}
	}
	return n
}
