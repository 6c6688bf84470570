package panel

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Equat-ion/titles/internal/addons"
	"github.com/Equat-ion/titles/internal/stremio"
)

// State is what the addon panel should currently display.
type State string

const (
	StateLoginPrompt State = "login_prompt"
	StateLoading     State = "loading"
	StateError       State = "error"
	StateEmpty       State = "empty"
	StatePopulated   State = "populated"
)

// Event is one panel update delivered to the listener. Addons is a copy the
// listener may keep; Err is set only for StateError.
type Event struct {
	State  State
	Addons []stremio.Descriptor
	Err    error
}

// Listener receives panel events. It is always invoked from the controller's
// own goroutine, never concurrently with itself.
type Listener func(Event)

// Controller drives the addon panel state machine. All state lives on a
// single goroutine fed by a mailbox of closures; network work happens on
// worker goroutines that post their completions back to the mailbox.
type Controller struct {
	svc      *addons.Service
	listener Listener
	log      *zerolog.Logger

	mailbox chan func()
	stopCh  chan struct{}
	stopOne sync.Once

	// Owned by the mailbox goroutine.
	state         State
	collection    []stremio.Descriptor
	loadID        uuid.UUID
	savesInFlight int
	loadQueued    bool
}

// NewController creates a Controller that reports panel updates to listener.
func NewController(svc *addons.Service, listener Listener, log *zerolog.Logger) *Controller {
	return &Controller{
		svc:      svc,
		listener: listener,
		log:      log,
		mailbox:  make(chan func(), 16),
		stopCh:   make(chan struct{}),
	}
}

// Start launches the controller goroutine and enters the initial state:
// the login prompt when no session exists, otherwise a collection load.
func (c *Controller) Start() {
	go c.run()
	c.post(func() {
		if !c.svc.IsLoggedIn() {
			c.setState(StateLoginPrompt, nil, nil)
			return
		}
		c.beginLoad()
	})
}

// Stop shuts down the controller goroutine. Posts after Stop are dropped.
// Safe to call more than once.
func (c *Controller) Stop() {
	c.stopOne.Do(func() {
		close(c.stopCh)
	})
}

// Load requests a fresh fetch of the addon collection.
func (c *Controller) Load() {
	c.post(c.beginLoad)
}

// Retry re-enters loading from the error or empty state.
func (c *Controller) Retry() {
	c.Load()
}

// Toggle enables or disables the addon at index and saves the collection.
func (c *Controller) Toggle(index int, enabled bool) {
	c.post(func() {
		if c.state != StatePopulated {
			c.log.Warn().Str("state", string(c.state)).Msg("toggle ignored outside populated state")
			return
		}
		if enabled {
			c.collection = addons.Enable(c.collection, index)
		} else {
			c.collection = addons.Disable(c.collection, index)
		}
		c.setState(StatePopulated, c.collection, nil)
		c.beginSave()
	})
}

// Remove deletes the addon at index and saves the collection.
func (c *Controller) Remove(index int) {
	c.post(func() {
		if c.state != StatePopulated {
			c.log.Warn().Str("state", string(c.state)).Msg("remove ignored outside populated state")
			return
		}
		c.collection = addons.Remove(c.collection, index)
		c.setState(StatePopulated, c.collection, nil)
		c.beginSave()
	})
}

func (c *Controller) run() {
	for {
		select {
		case fn := <-c.mailbox:
			fn()
		case <-c.stopCh:
			return
		}
	}
}

// post hands fn to the mailbox goroutine. After Stop it is a no-op.
func (c *Controller) post(fn func()) {
	select {
	case c.mailbox <- fn:
	case <-c.stopCh:
	}
}

// beginLoad runs on the mailbox goroutine. While a save is in flight the
// load is deferred until every pending save has finished.
func (c *Controller) beginLoad() {
	if c.savesInFlight > 0 {
		c.loadQueued = true
		return
	}

	c.setState(StateLoading, nil, nil)

	id := uuid.New()
	c.loadID = id

	go func() {
		col, err := c.svc.Collection(context.Background())
		c.post(func() {
			if id != c.loadID {
				c.log.Debug().Msg("discarding stale collection load")
				return
			}
			if err != nil {
				c.log.Error().Err(err).Msg("failed to load addon collection")
				c.setState(StateError, nil, err)
				return
			}
			c.collection = col
			if len(col) == 0 {
				c.setState(StateEmpty, nil, nil)
				return
			}
			c.setState(StatePopulated, col, nil)
		})
	}()
}

// beginSave runs on the mailbox goroutine. Concurrent saves are allowed and
// the last to reach the server wins; each one works on its own snapshot.
func (c *Controller) beginSave() {
	snapshot := cloneCollection(c.collection)
	c.savesInFlight++

	go func() {
		err := c.svc.SetCollection(context.Background(), snapshot)
		c.post(func() {
			c.savesInFlight--
			if err != nil {
				c.log.Error().Err(err).Msg("failed to save addon collection")
			}
			if c.savesInFlight == 0 && c.loadQueued {
				c.loadQueued = false
				c.beginLoad()
			}
		})
	}()
}

// setState runs on the mailbox goroutine and notifies the listener.
func (c *Controller) setState(state State, col []stremio.Descriptor, err error) {
	c.state = state
	if c.listener == nil {
		return
	}
	c.listener(Event{State: state, Addons: cloneCollection(col), Err: err})
}

func cloneCollection(col []stremio.Descriptor) []stremio.Descriptor {
	if col == nil {
		return nil
	}
	out := make([]stremio.Descriptor, len(col))
	for i := range col {
		out[i] = col[i].Clone()
	}
	return out
}
