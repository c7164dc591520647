package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"synonym_arena/internal/domain"
	"synonym_arena/internal/game"
	"synonym_arena/internal/logger"
	"synonym_arena/internal/service"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type player struct {
	name   string
	userID string
	conn   *websocket.Conn
}

func main() {
	_ = godotenv.Load()
	log := logger.Init("info", false)

	addr := flag.String("addr", "127.0.0.1:"+envOr("APP_PORT", "8080"), "server host:port")
	mode := flag.String("mode", string(game.ModeSynonyms), "game mode")
	timeout := flag.Duration("timeout", 60*time.Second, "overall deadline")
	flag.Parse()

	tokens := service.NewJWTManager(os.Getenv("JWT_SECRET"))
	players := []*player{{name: "smokeA", userID: "smoke-a"}, {name: "smokeB", userID: "smoke-b"}}

	for _, p := range players {
		// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
		url := fmt.Sprintf("ws://%s/ws", *addr)
		if tokens.Enabled() {
			token, err := tokens.Generate(p.userID)
			if err != nil {
				logger.Fatal("generate token", "player", p.name, "error", err)
			}
			url += "?token=" + token
		}
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			logger.Fatal("dial", "player", p.name, "error", err)
		}
		defer conn.Close()
		p.conn = conn
	}

	deadline := time.Now().Add(*timeout)
	var wg sync.WaitGroup
	results := make([]error, len(players))
	for i, p := range players {
		if err := send(p.conn, domain.MsgJoinQueue, domain.JoinQueuePayload{
			GameMode: *mode, DisplayName: p.name, UserID: p.userID,
		}); err != nil {
			logger.Fatal("join", "player", p.name, "error", err)
		}
		wg.Go(func() { results[i] = play(p, deadline) })
		// keep the queue order stable
		time.Sleep(100 * time.Millisecond)
	}
	wg.Wait()

	for i, err := range results {
		if err != nil {
			logger.Fatal("smoke test failed", "player", players[i].name, "error", err)
		}
	}
	log.Info("smoke test finished")
}

// play answers every round with the strongest synonym and returns once
// game_over arrives.
func play(p *player, deadline time.Time) error {
	var gameID, opponent string
	round := 0
	for {
		_ = p.conn.SetReadDeadline(deadline)
		var msg envelope
		if err := p.conn.ReadJSON(&msg); err != nil {
			return err
		}
		logger.Info("received", "player", p.name, "type", msg.Type)

		var word domain.Word
		switch msg.Type {
		case domain.MsgGameStart:
			var gs domain.GameStartPayload
			if err := json.Unmarshal(msg.Payload, &gs); err != nil {
				return err
			}
			gameID, opponent, word = gs.GameID, gs.Opponent.ConnectionHandle, gs.ContentItem
			round = 1
		case domain.MsgNextRound:
			var nr domain.NextRoundPayload
			if err := json.Unmarshal(msg.Payload, &nr); err != nil {
				return err
			}
			word, round = nr.ContentItem, nr.RoundNumber
		case domain.MsgGameOver:
			var over domain.GameOverPayload
			if err := json.Unmarshal(msg.Payload, &over); err != nil {
				return err
			}
			logger.Info("game over", "player", p.name,
				"score", over.YourRecord.TotalScore, "opponent_score", over.OpponentRecord.TotalScore)
			return nil
		case domain.MsgOpponentForfeit:
			return fmt.Errorf("opponent forfeited")
		case domain.MsgError:
			return fmt.Errorf("server error: %s", msg.Payload)
		default:
			continue
		}

		answer := word.StrongestMatches[0]
		if err := send(p.conn, domain.MsgSubmitWord, domain.SubmitWordPayload{
			OpponentConnectionHandle: opponent,
			AnsweredWord:             answer,
			PointValue:               3,
			GameID:                   gameID,
		}); err != nil {
			return err
		}
		if err := send(p.conn, domain.MsgFinishRound, domain.FinishRoundPayload{
			GameID:      gameID,
			RoundNumber: round,
			Submissions: []domain.Submission{{Word: answer, PointValue: 3}},
		}); err != nil {
			return err
		}
	}
}

func send(conn *websocket.Conn, msgType string, payload any) error {
	return conn.WriteJSON(map[string]any{"type": msgType, "payload": payload})
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
