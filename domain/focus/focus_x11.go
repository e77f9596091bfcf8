//go:build linux

package focus

import (
	"encoding/binary"
	"log/slog"
	"strings"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
)

// x11Query reads the EWMH active-window properties from the X server.
// The connection is established lazily and re-established after errors, so a
// query created before the session is up still recovers.
type x11Query struct {
	logger *slog.Logger
	mu     sync.Mutex
	conn   *xgb.Conn
	root   xproto.Window
	atoms  map[string]xproto.Atom
}

var x11Atoms = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_CLIENT_LIST",
	"_NET_WM_NAME",
	"WM_NAME",
	"UTF8_STRING",
}

func newQuery(logger *slog.Logger) (Query, error) {
	return &x11Query{logger: logger}, nil
}

func (q *x11Query) connect() error {
	if q.conn != nil {
		return nil
	}
	conn, err := xgb.NewConn()
	if err != nil {
		return errors.Wrap(err, "connect to X server")
	}
	atoms := make(map[string]xproto.Atom, len(x11Atoms))
	for _, name := range x11Atoms {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return errors.Wrapf(err, "intern atom %s", name)
		}
		atoms[name] = reply.Atom
	}
	q.conn = conn
	q.root = xproto.Setup(conn).DefaultScreen(conn).Root
	q.atoms = atoms
	return nil
}

func (q *x11Query) reset() {
	if q.conn != nil {
		q.conn.Close()
		q.conn = nil
	}
}

// ForegroundTitle returns the title of the active window per
// _NET_ACTIVE_WINDOW, falling back to the input-focus window.
func (q *x11Query) ForegroundTitle() (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.connect(); err != nil {
		return "", err
	}
	win, err := q.activeWindow()
	if err != nil {
		q.reset()
		return "", err
	}
	title := q.windowName(win)
	if title == "" {
		return "", errors.New("active window has no name")
	}
	return title, nil
}

// ListWindows returns the titles of the window manager's client list.
func (q *x11Query) ListWindows() ([]string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.connect(); err != nil {
		return nil, err
	}
	data, err := q.getProperty(q.root, q.atoms["_NET_CLIENT_LIST"], xproto.AtomWindow, 1024)
	if err != nil {
		q.reset()
		return nil, errors.Wrap(err, "read _NET_CLIENT_LIST")
	}
	var titles []string
	for i := 0; i+4 <= len(data); i += 4 {
		win := xproto.Window(binary.LittleEndian.Uint32(data[i:]))
		if title := q.windowName(win); title != "" {
			titles = append(titles, title)
		}
	}
	return titles, nil
}

func (q *x11Query) activeWindow() (xproto.Window, error) {
	data, err := q.getProperty(q.root, q.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
	if err == nil && len(data) >= 4 {
		if win := xproto.Window(binary.LittleEndian.Uint32(data)); win != 0 {
			return win, nil
		}
	}
	reply, err := xproto.GetInputFocus(q.conn).Reply()
	if err != nil {
		return 0, errors.Wrap(err, "query input focus")
	}
	if reply.Focus == 0 || reply.Focus == q.root {
		return 0, errors.New("no active window")
	}
	return reply.Focus, nil
}

func (q *x11Query) windowName(win xproto.Window) string {
	data, err := q.getProperty(win, q.atoms["_NET_WM_NAME"], q.atoms["UTF8_STRING"], 256)
	if err != nil || len(data) == 0 {
		data, err = q.getProperty(win, q.atoms["WM_NAME"], xproto.AtomString, 256)
		if err != nil {
			return ""
		}
	}
	return strings.TrimSpace(strings.TrimRight(string(data), "\x00"))
}

func (q *x11Query) getProperty(win xproto.Window, atom, typ xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(q.conn, false, win, atom, typ, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}
