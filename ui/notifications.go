// Package ui provides the graphical user interface for KDE Theme Backup.
// This file contains the desktop notification system for finished commands.
package ui

import (
	"fmt"
	"os/exec"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/yllada/kde-theme-backup/common"
)

const (
	notifyService   = "org.freedesktop.Notifications"
	notifyPath      = "/org/freedesktop/Notifications"
	notifyMethod    = notifyService + ".Notify"
	notifyTimeoutMs = 5000
)

// NotificationType represents the type of notification
type NotificationType int

const (
	NotificationInfo NotificationType = iota
	NotificationSuccess
	NotificationWarning
	NotificationError
)

// Notification represents a system notification
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
	Icon    string
}

// icon returns the notification icon, picking one by type when unset.
func (n Notification) icon() string {
	if n.Icon != "" {
		return n.Icon
	}
	switch n.Type {
	case NotificationSuccess:
		return "preferences-desktop-theme"
	case NotificationWarning:
		return "dialog-warning"
	case NotificationError:
		return "dialog-error"
	default:
		return "preferences-desktop-theme"
	}
}

var urgencyNames = [...]string{"low", "normal", "critical"}

// urgency maps the type to the freedesktop urgency level (0 low, 1 normal, 2 critical).
func (n Notification) urgency() byte {
	switch n.Type {
	case NotificationError:
		return 2
	case NotificationWarning:
		return 1
	default:
		return 0
	}
}

// Notifier delivers notifications over the session bus and falls back to
// notify-send when the bus is unavailable. It implements common.Notifier.
type Notifier struct {
	mu      sync.Mutex
	conn    *dbus.Conn
	enabled bool
}

// NewNotifier creates a notifier. A disabled notifier drops everything.
func NewNotifier(enabled bool) *Notifier {
	return &Notifier{enabled: enabled}
}

var _ common.Notifier = (*Notifier)(nil)

// SetEnabled turns notifications on or off.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// Notify implements common.Notifier.
func (n *Notifier) Notify(title, message string) error {
	return n.Show(Notification{Title: title, Message: message})
}

// NotifyWithIcon implements common.Notifier.
func (n *Notifier) NotifyWithIcon(title, message, icon string) error {
	return n.Show(Notification{Title: title, Message: message, Icon: icon})
}

// Show displays a notification.
func (n *Notifier) Show(notif Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.enabled {
		return nil
	}

	err := n.sendDBus(notif)
	if err == nil {
		return nil
	}
	common.LogDebug("D-Bus notification failed, falling back to notify-send: %v", err)

	cmd := exec.Command("notify-send",
		"--app-name="+common.AppName,
		"--icon="+notif.icon(),
		"--urgency="+urgencyNames[notif.urgency()],
		notif.Title,
		notif.Message,
	)
	if err := cmd.Run(); err != nil {
		common.LogWarn("Error showing notification: %v", err)
		return err
	}
	return nil
}

// sendDBus calls org.freedesktop.Notifications.Notify. Must hold n.mu.
func (n *Notifier) sendDBus(notif Notification) error {
	if n.conn == nil {
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			return err
		}
		n.conn = conn
	}

	obj := n.conn.Object(notifyService, notifyPath)
	call := obj.Call(notifyMethod, 0,
		common.AppName,
		uint32(0),
		notif.icon(),
		notif.Title,
		notif.Message,
		[]string{},
		map[string]dbus.Variant{"urgency": dbus.MakeVariant(notif.urgency())},
		int32(notifyTimeoutMs),
	)
	if call.Err != nil {
		// Drop the connection so the next attempt reconnects.
		n.conn.Close()
		n.conn = nil
		return call.Err
	}
	return nil
}

// Close releases the bus connection.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
	}
}

// NotifySucceeded shows a notification when a command completes.
func (n *Notifier) NotifySucceeded(what string) {
	_ = n.Show(Notification{
		Title:   "Done",
		Message: what,
		Type:    NotificationSuccess,
	})
}

// NotifyFailed shows a notification when a command exits with an error.
func (n *Notifier) NotifyFailed(what string, exitCode int) {
	_ = n.Show(Notification{
		Title:   "Command failed",
		Message: fmt.Sprintf("%s (status %d)", what, exitCode),
		Type:    NotificationError,
	})
}
