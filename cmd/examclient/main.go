package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/stemsi/exstem-exam-client/internal/apiclient"
	"github.com/stemsi/exstem-exam-client/internal/auth"
	"github.com/stemsi/exstem-exam-client/internal/config"
	"github.com/stemsi/exstem-exam-client/internal/logger"
	"github.com/stemsi/exstem-exam-client/internal/model"
	"github.com/stemsi/exstem-exam-client/internal/repository"
	"github.com/stemsi/exstem-exam-client/internal/service"
	"github.com/stemsi/exstem-exam-client/internal/validator"
)

const usage = `Uso: examclient <comando> [argumentos]

Comandos:
  login [-u usuario]              inicia sesión y guarda el token
  logout                          borra el token guardado
  catalog [-assignment N]         lista los exámenes pendientes y completados
  take <examen>                   rinde un examen
  review <examen> <intento>       revisa un intento finalizado`

// userError carries a message printed to the student as is.
type userError string

func (e userError) Error() string { return string(e) }

// app wires the LMS repositories for one authenticated student.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	identity  *auth.Context
	exams     *repository.ExamRepository
	questions *repository.QuestionRepository
	attempts  *repository.AttemptRepository
}

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "login":
		err = runLogin(ctx, cfg, log, args)
	case "logout":
		err = auth.FileStore{Path: cfg.TokenFile}.Clear()
		if err == nil {
			fmt.Println("Sesión cerrada.")
		}
	case "catalog", "take", "review":
		var a *app
		a, err = newApp(cfg, log)
		if err == nil {
			switch cmd {
			case "catalog":
				err = a.runCatalog(ctx, args)
			case "take":
				err = a.runTake(ctx, args)
			default:
				err = a.runReview(ctx, args)
			}
		}
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Debug().Err(err).Str("command", cmd).Msg("Command failed")
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, log zerolog.Logger) (*app, error) {
	identity, err := auth.FileStore{Path: cfg.TokenFile}.Load()
	if err != nil {
		return nil, err
	}
	if identity.Expired(time.Now()) {
		return nil, auth.ErrTokenExpired
	}

	api := apiclient.New(cfg.APIBaseURL, identity,
		apiclient.WithTimeout(cfg.HTTPTimeout),
		apiclient.WithLogger(log),
	)

	return &app{
		cfg:       cfg,
		log:       log,
		identity:  identity,
		exams:     repository.NewExamRepository(api),
		questions: repository.NewQuestionRepository(api),
		attempts:  repository.NewAttemptRepository(api),
	}, nil
}

// describe renders err for the student.
func describe(err error) string {
	var ue userError
	switch {
	case errors.As(err, &ue):
		return string(ue)
	case errors.Is(err, auth.ErrNoToken), errors.Is(err, auth.ErrTokenExpired),
		apiclient.IsStatus(err, http.StatusUnauthorized):
		return "Su sesión no es válida. Inicie sesión con 'examclient login'."
	}
	return service.UserMessage(err)
}

// ─── login ─────────────────────────────────────────────────────────────

func runLogin(ctx context.Context, cfg *config.Config, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("u", "", "nombre de usuario")
	_ = fs.Parse(args)

	reader := bufio.NewReader(os.Stdin)
	if *username == "" {
		fmt.Print("Usuario: ")
		line, _ := reader.ReadString('\n')
		*username = strings.TrimSpace(line)
	}
	if *username == "" {
		return userError("El usuario es obligatorio.")
	}

	fmt.Print("Contraseña: ")
	var password string
	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = string(raw)
	} else {
		line, _ := reader.ReadString('\n')
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return userError("La contraseña es obligatoria.")
	}

	api := apiclient.New(cfg.APIBaseURL, nil,
		apiclient.WithTimeout(cfg.HTTPTimeout),
		apiclient.WithLogger(log),
	)
	resp, err := repository.NewAuthRepository(api).Login(ctx, *username, password)
	if err != nil {
		if apiclient.IsStatus(err, http.StatusUnauthorized) {
			return userError("Usuario o contraseña incorrectos.")
		}
		return err
	}

	if err := (auth.FileStore{Path: cfg.TokenFile}).Save(resp.Token); err != nil {
		return err
	}
	fmt.Printf("Bienvenido, %s.\n", resp.Name)
	return nil
}

// ─── catalog ───────────────────────────────────────────────────────────

func (a *app) catalogService(assignmentID int) *service.CatalogService {
	return service.NewCatalogService(
		a.exams,
		a.attempts,
		a.identity,
		model.Enrollment{AssignmentID: assignmentID},
		a.log,
	)
}

func (a *app) runCatalog(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("catalog", flag.ExitOnError)
	assignmentID := fs.Int("assignment", a.cfg.AssignmentID, "id de la asignación del curso")
	_ = fs.Parse(args)

	printCatalog(newConsole(os.Stdout), a.catalogService(*assignmentID).Load(ctx))
	return nil
}

// findEntry looks up examID in the student's catalog.
func (a *app) findEntry(ctx context.Context, examID int) (service.CatalogEntry, error) {
	cat := a.catalogService(a.cfg.AssignmentID).Load(ctx)
	for _, group := range [][]service.CatalogEntry{cat.Pending, cat.Completed} {
		for _, e := range group {
			if e.Exam.ID == examID {
				return e, nil
			}
		}
	}
	if cat.Degraded {
		return service.CatalogEntry{}, userError("No se pudo cargar el catálogo. Intente de nuevo.")
	}
	return service.CatalogEntry{}, userError(fmt.Sprintf("El examen %d no está en su catálogo.", examID))
}

func positionalInts(args []string, names ...string) ([]int, error) {
	if len(args) < len(names) {
		return nil, userError("Faltan argumentos: " + strings.Join(names, ", ") + ".\n\n" + usage)
	}
	out := make([]int, len(names))
	for i, name := range names {
		n, err := strconv.Atoi(args[i])
		if err != nil || n <= 0 {
			return nil, userError(fmt.Sprintf("El %s debe ser un número positivo.", name))
		}
		out[i] = n
	}
	return out, nil
}
