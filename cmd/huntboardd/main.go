package main

import (
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"huntboard/internal/audio"
	"huntboard/internal/board"
	"huntboard/internal/combat"
	"huntboard/internal/gallery"
	"huntboard/internal/ipc"
	"huntboard/internal/nlu"
	"huntboard/internal/proxy"
	"huntboard/internal/server"
	"huntboard/internal/stt"
	"huntboard/internal/tts"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	proxyAddr := cli.StringP("proxy", "p", "", "SOCKS proxy address for API calls (empty = direct)")
	proxyTimeout := cli.Duration("proxy-timeout", proxy.DefaultTimeout, "HTTP timeout for proxied API calls")
	addr := cli.String("addr", ":8080", "HTTP listen address")
	sttBackend := cli.String("stt", "openai", "Transcription backend: openai or whisper")
	whisperModel := cli.String("whisper-model", "third_party/whisper.cpp/models/ggml-medium.bin", "Local whisper model path")
	boardFile := cli.String("board-file", "data/activeBounties.json", "Bounty board JSON file")
	galleryFile := cli.String("gallery-file", "data/gallery.json", "Gallery metadata JSON file")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	godotenv.Load(*envFile)
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Error("OPENAI_API_KEY not set")
		os.Exit(1)
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if *proxyAddr != "" {
		httpClient, err := proxy.NewSocksClient(*proxyAddr, *proxyTimeout)
		if err != nil {
			log.Error("Failed to dial socks proxy", "proxy", *proxyAddr, "err", err)
			os.Exit(1)
		}
		opts = append(opts, option.WithHTTPClient(httpClient))
		log.Debug("Loaded proxy")
	}
	client := openai.NewClient(opts...)

	rec := audio.NewRecorder()
	if err := rec.Init(); err != nil {
		log.Error("Failed to init audio", "err", err)
		os.Exit(1)
	}
	defer rec.Close()

	log.Debug("Loaded recorder")

	var transcriber combat.Transcriber
	switch *sttBackend {
	case "whisper":
		local, err := stt.NewLocal(*whisperModel)
		if err != nil {
			log.Error("Failed to init whisper", "err", err)
			os.Exit(1)
		}
		defer local.Close()
		transcriber = local
		log.Debug("Loaded local whisper")
	default:
		transcriber = stt.NewRemote(client)
	}

	ducker := audio.NewDucker([]string{"huntboardd", "beep"}, 10)
	player := audio.NewPlayer(ducker)

	session := combat.NewSession()
	pipeline := combat.NewPipeline(session, transcriber, nlu.NewAdvisor(client), tts.NewClient(client), player)
	assistant := combat.NewAssistant(rec, session, pipeline, player)

	log.Info("Boot up - successful")

	if err := ipc.StartServer(func(msg ipc.ControlMessage) ipc.Reply {
		return handleControl(assistant, msg)
	}); err != nil {
		log.Error("Failed ipc server", "err", err)
		os.Exit(1)
	}

	bounties := newBoardStore(*boardFile)
	galleryStore := newGalleryStore(*galleryFile)

	var media *gallery.Cloudinary
	if cloud := os.Getenv("CLOUDINARY_CLOUD_NAME"); cloud != "" {
		media = gallery.NewCloudinary(cloud,
			os.Getenv("CLOUDINARY_API_KEY"),
			os.Getenv("CLOUDINARY_API_SECRET"), nil)
	}

	srv := server.New(bounties, gallery.NewService(galleryStore, media), media, assistant, os.Getenv("GUILD_KEY"))

	go func() {
		log.Info("HTTP API listening", "addr", *addr)
		if err := http.ListenAndServe(*addr, srv.Router()); err != nil {
			log.Error("HTTP server died", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("Shutting down")
	assistant.Disable()
}

func handleControl(assistant *combat.Assistant, msg ipc.ControlMessage) ipc.Reply {
	switch msg.Cmd {
	case "enable":
		if err := assistant.Enable(); err != nil {
			return ipc.Reply{Error: err.Error()}
		}
		return ipc.Reply{OK: true}
	case "disable":
		assistant.Disable()
		return ipc.Reply{OK: true}
	case "reset":
		assistant.ResetProfile()
		return ipc.Reply{OK: true}
	case "battle":
		assistant.StartBattle()
		return ipc.Reply{OK: true}
	case "status":
		st, err := json.Marshal(assistant.Status(true))
		if err != nil {
			return ipc.Reply{Error: err.Error()}
		}
		return ipc.Reply{OK: true, Status: st}
	default:
		log.Warn("Unknown command", "cmd", msg.Cmd)
		return ipc.Reply{Error: "unknown command: " + msg.Cmd}
	}
}

func newBoardStore(path string) board.Store {
	if url := os.Getenv("BOUNTIES_JSON_URL"); url != "" {
		return board.NewBinStore(url, os.Getenv("JSONBIN_API_KEY"), nil)
	}
	return board.NewFileStore(path)
}

func newGalleryStore(path string) gallery.Store {
	if url := os.Getenv("GALLERY_JSON_URL"); url != "" {
		return gallery.NewBinStore(url, os.Getenv("JSONBIN_API_KEY"), nil)
	}
	return gallery.NewFileStore(path)
}
