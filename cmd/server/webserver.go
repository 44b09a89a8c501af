package main

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/coder/websocket"

	mandel "github.com/marben/banded_mandel"
)

// webServer creates the http server exposing svc on addr
func webServer(addr string, svc *renderService) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           newMux(svc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("listening on http://%s", addr)
	return srv
}

func newMux(svc *renderService) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /render", renderHandler(svc))
	mux.HandleFunc("GET /regions", regionsHandler)
	mux.HandleFunc("/ws", websocketHandler(svc))
	return mux
}

// renderHandler serves one encoded image per request
func renderHandler(svc *renderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		j, err := svc.parse(renderRequest{
			Size:   q.Get("size"),
			UL:     q.Get("ul"),
			LR:     q.Get("lr"),
			Region: q.Get("region"),
			Format: q.Get("format"),
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		img, err := svc.renderShared(r.Context(), j)
		if err != nil {
			log.Printf("render %s failed: %v", j.key(), err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", j.format.ContentType())
		w.Header().Set("Content-Length", strconv.Itoa(len(img)))
		if _, err := w.Write(img); err != nil {
			log.Printf("write %s: %v", j.key(), err)
		}
	}
}

type regionJSON struct {
	UL [2]float64 `json:"ul"`
	LR [2]float64 `json:"lr"`
}

func regionsHandler(w http.ResponseWriter, _ *http.Request) {
	out := make(map[string]regionJSON, len(mandel.Regions))
	for name, p := range mandel.Regions {
		out[name] = regionJSON{
			UL: [2]float64{real(p.UpperLeft), imag(p.UpperLeft)},
			LR: [2]float64{real(p.LowerRight), imag(p.LowerRight)},
		}
	}

	data, err := sonic.ConfigStd.Marshal(out)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		log.Printf("write regions: %v", err)
	}
}

// renderResult precedes every image sent over the websocket.
// An empty Error means a binary message with the image follows.
type renderResult struct {
	Type      string `json:"type"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Format    string `json:"format,omitempty"`
	Bytes     int    `json:"bytes,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

type wsMessage struct {
	typ  websocket.MessageType
	data []byte
}

// websocketHandler answers JSON render requests on a websocket, one
// renderResult and image per request, until the client goes away.
// The connection is read continuously so that a client leaving mid-render
// cancels the render.
func websocketHandler(svc *renderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			log.Println(err)
			return
		}
		defer c.CloseNow()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		log.Printf("websocket session from %s", r.RemoteAddr)

		msgs := make(chan wsMessage)
		go func() {
			defer cancel()
			defer close(msgs)
			for {
				typ, data, err := c.Read(ctx)
				if err != nil {
					if s := websocket.CloseStatus(err); s != websocket.StatusNormalClosure && s != websocket.StatusGoingAway && ctx.Err() == nil {
						log.Printf("websocket %s: %v", r.RemoteAddr, err)
					}
					return
				}
				select {
				case msgs <- wsMessage{typ: typ, data: data}:
				case <-ctx.Done():
					return
				}
			}
		}()

		for m := range msgs {
			if m.typ != websocket.MessageText {
				c.Close(websocket.StatusUnsupportedData, "expected JSON text messages")
				return
			}

			res, img := serveRequest(ctx, svc, m.data)
			hdr, err := sonic.Marshal(res)
			if err != nil {
				log.Printf("marshal result: %v", err)
				c.Close(websocket.StatusInternalError, "marshal result")
				return
			}
			if err := c.Write(ctx, websocket.MessageText, hdr); err != nil {
				log.Printf("websocket %s: %v", r.RemoteAddr, err)
				return
			}
			if img == nil {
				continue
			}
			if err := c.Write(ctx, websocket.MessageBinary, img); err != nil {
				log.Printf("websocket %s: %v", r.RemoteAddr, err)
				return
			}
		}
	}
}

func serveRequest(ctx context.Context, svc *renderService, data []byte) (renderResult, []byte) {
	var req renderRequest
	if err := sonic.Unmarshal(data, &req); err != nil {
		return renderResult{Type: "result", Error: "invalid request: " + err.Error()}, nil
	}

	j, err := svc.parse(req)
	if err != nil {
		return renderResult{Type: "result", Error: err.Error()}, nil
	}

	start := time.Now()
	img, err := svc.render(ctx, j)
	if err != nil {
		log.Printf("render %s failed: %v", j.key(), err)
		return renderResult{Type: "result", Error: err.Error()}, nil
	}

	return renderResult{
		Type:      "result",
		Width:     j.bounds.W,
		Height:    j.bounds.H,
		Format:    string(j.format),
		Bytes:     len(img),
		ElapsedMS: time.Since(start).Milliseconds(),
	}, img
}
