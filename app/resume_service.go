package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"
	"time"

	"polypath/domain/resume"
	"polypath/domain/roadmap"
	"polypath/internal/config"
	apperrors "polypath/internal/errors"
	"polypath/internal/logsink"
	"polypath/ports"
)

const (
	resumeSandboxTimeout = 120 * time.Second
	resumeScriptTimeout  = 60 * time.Second
	latexInstallTimeout  = 180 * time.Second
	latexCompileTimeout  = 90 * time.Second

	maxResumePromptChars = 6000
)

// pdfExtractScript pulls the text out of resume.pdf, installing pypdf on
// first use.
const pdfExtractScript = `python - <<'PY'
import subprocess, sys

try:
    from pypdf import PdfReader
except ImportError:
    subprocess.run(
        [sys.executable, "-m", "pip", "install", "-q", "pypdf"],
        check=True,
        stdout=subprocess.DEVNULL,
        stderr=subprocess.DEVNULL,
    )
    from pypdf import PdfReader

reader = PdfReader("resume.pdf")
text_chunks = []
for page in reader.pages:
    content = page.extract_text() or ""
    text_chunks.append(content)

print("\n".join(text_chunks))
PY`

// ResumeUploadRequest ingests a hosted resume PDF for a user.
type ResumeUploadRequest struct {
	UserID  string `json:"userId"`
	FileURL string `json:"fileUrl"`
}

// ResumeUploadResponse carries the extracted text. ResumeID is empty when
// persistence was skipped.
type ResumeUploadResponse struct {
	ResumeID   string   `json:"resumeId,omitempty"`
	ParsedText string   `json:"parsedText"`
	SandboxID  string   `json:"sandboxId,omitempty"`
	Logs       []string `json:"logs"`
}

// ResumeGenerateRequest tailors the user's latest resume to a target role.
type ResumeGenerateRequest struct {
	UserID   string   `json:"userId"`
	Role     string   `json:"role"`
	Location string   `json:"location,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// ResumeGenerateResponse carries the tailored LaTeX source and, when the
// in-sandbox compile succeeded, the resulting PDF as base64.
type ResumeGenerateResponse struct {
	Latex     string   `json:"latex"`
	PDFBase64 string   `json:"pdfBase64,omitempty"`
	ResumeID  string   `json:"resumeId,omitempty"`
	SandboxID string   `json:"sandboxId,omitempty"`
	Logs      []string `json:"logs"`
}

// ResumeService runs the resume pipeline: PDF ingestion, LLM tailoring
// against the LaTeX template, and in-sandbox compilation. Parsing and
// compilation both happen inside ephemeral sandboxes; a failed compile
// degrades to LaTeX-only output.
type ResumeService struct {
	sandbox   ports.SandboxProvider
	generator ports.Generator
	resumes   ports.ResumeRepository
	roadmaps  ports.RoadmapRepository
	cfg       config.SandboxConfig
}

// NewResumeService creates a resume service
func NewResumeService(sandbox ports.SandboxProvider, generator ports.Generator, resumes ports.ResumeRepository, roadmaps ports.RoadmapRepository, cfg config.SandboxConfig) *ResumeService {
	return &ResumeService{sandbox: sandbox, generator: generator, resumes: resumes, roadmaps: roadmaps, cfg: cfg}
}

// Upload downloads the PDF into a sandbox, extracts its text, and stores the
// parsed resume best-effort.
func (s *ResumeService) Upload(ctx context.Context, req ResumeUploadRequest) (*ResumeUploadResponse, error) {
	if req.UserID == "" || req.FileURL == "" {
		return nil, apperrors.ValidationError("userId and fileUrl are required")
	}

	sink := logsink.New()
	parsedText, sandboxID, err := s.extractPDFText(ctx, req.FileURL, sink)
	if err != nil {
		return nil, err
	}

	var resumeID string
	if id, insertErr := s.resumes.Insert(ctx, &resume.Record{
		UserID:     req.UserID,
		SourceURL:  req.FileURL,
		ParsedText: parsedText,
	}); insertErr != nil {
		sink.Appendf("Resume insert skipped: %v", insertErr)
		log.Printf("[Resume] insert failed for user %s: %v", req.UserID, insertErr)
	} else {
		resumeID = id
	}

	return &ResumeUploadResponse{
		ResumeID:   resumeID,
		ParsedText: parsedText,
		SandboxID:  sandboxID,
		Logs:       sink.Lines(),
	}, nil
}

func (s *ResumeService) extractPDFText(ctx context.Context, fileURL string, sink ports.Sink) (string, string, error) {
	session := s.sandbox.Create(ctx, s.cfg.Template, resumeSandboxTimeout, sink)
	if !session.Ready {
		return "", "", apperrors.ExternalServiceError("sandbox", fmt.Errorf("no sandbox available for resume parsing"))
	}
	defer func() {
		s.sandbox.Run(ctx, session, "rm -f resume.pdf || true", ports.RunOpts{})
		s.sandbox.Close(ctx, session, sink)
	}()

	download := s.sandbox.Run(ctx, session, fmt.Sprintf("curl -L %q -o resume.pdf", fileURL), ports.RunOpts{Timeout: resumeScriptTimeout})
	if download.ExitCode != 0 {
		sink.Appendf("Failed to download PDF inside sandbox.")
		return "", session.ID, apperrors.ExternalServiceError("sandbox", fmt.Errorf("resume download failed"))
	}

	parse := s.sandbox.Run(ctx, session, pdfExtractScript, ports.RunOpts{Timeout: resumeScriptTimeout})
	parsedText := strings.TrimSpace(parse.Stdout)
	if parsedText == "" {
		sink.Appendf("Parsed text was empty after extraction.")
		return "", session.ID, apperrors.ExternalServiceError("sandbox", fmt.Errorf("resume text extraction failed"))
	}

	sink.Appendf("Extracted ~%d characters from resume.pdf.", len(parsedText))
	return parsedText, session.ID, nil
}

// Generate tailors the user's latest parsed resume to a role: the LLM fills
// the LaTeX template, a sandbox compiles it, and the LaTeX source is stored
// as a generated resume best-effort.
func (s *ResumeService) Generate(ctx context.Context, req ResumeGenerateRequest) (*ResumeGenerateResponse, error) {
	if req.UserID == "" || req.Role == "" {
		return nil, apperrors.ValidationError("userId and role are required")
	}

	sink := logsink.New()

	stored, err := s.resumes.LatestByUser(ctx, req.UserID)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.CodeNotFound {
			return nil, apperrors.NotFound("parsed resume")
		}
		return nil, err
	}

	profile := s.lookupProfile(ctx, req.UserID, sink)

	latex, err := s.generator.GenerateText(ctx, buildResumePrompt(stored.ParsedText, req.Role, req.Location, req.Keywords, profile))
	if err != nil {
		return nil, err
	}
	sink.Appendf("Generated LaTeX with length %d.", len(latex))

	pdfBase64, sandboxID := s.compileLatex(ctx, latex, sink)

	var resumeID string
	if id, insertErr := s.resumes.Insert(ctx, &resume.Record{
		UserID:     req.UserID,
		SourceURL:  "generated:" + req.Role,
		ParsedText: latex,
	}); insertErr != nil {
		sink.Appendf("Resume insert skipped: %v", insertErr)
		log.Printf("[Resume] insert failed for user %s: %v", req.UserID, insertErr)
	} else {
		resumeID = id
	}

	return &ResumeGenerateResponse{
		Latex:     latex,
		PDFBase64: pdfBase64,
		ResumeID:  resumeID,
		SandboxID: sandboxID,
		Logs:      sink.Lines(),
	}, nil
}

// lookupProfile fetches the user's newest roadmap config to color the
// tailoring prompt. Any failure is logged and skipped.
func (s *ResumeService) lookupProfile(ctx context.Context, userID string, sink ports.Sink) *roadmap.LearnerProfile {
	summaries, err := s.roadmaps.ListByUser(ctx, userID)
	if err != nil {
		sink.Appendf("Profile lookup skipped: %v", err)
		return nil
	}
	if len(summaries) == 0 {
		return nil
	}
	profile := summaries[0].Config
	return &profile
}

// compileLatex builds the PDF inside a fresh sandbox. An unavailable
// sandbox or a failed build yields an empty string; the caller still
// returns the LaTeX source.
func (s *ResumeService) compileLatex(ctx context.Context, latex string, sink ports.Sink) (string, string) {
	session := s.sandbox.Create(ctx, s.cfg.Template, resumeSandboxTimeout, sink)
	if !session.Ready {
		sink.Appendf("Skipping PDF compile; no sandbox available.")
		return "", ""
	}
	defer func() {
		s.sandbox.Run(ctx, session, "rm -f resume.tex resume.pdf || true", ports.RunOpts{})
		s.sandbox.Close(ctx, session, sink)
	}()

	encoded := base64.StdEncoding.EncodeToString([]byte(latex))
	s.sandbox.Run(ctx, session, fmt.Sprintf("echo %q | base64 -d > resume.tex", encoded), ports.RunOpts{})

	check := s.sandbox.Run(ctx, session, "which xelatex", ports.RunOpts{})
	if check.ExitCode != 0 {
		sink.Appendf("Installing TeX Live base (with fontawesome) in sandbox...")
		s.sandbox.Run(ctx, session,
			"apt-get update && apt-get install -y texlive-xetex texlive-latex-recommended texlive-fonts-recommended texlive-fonts-extra",
			ports.RunOpts{Timeout: latexInstallTimeout, User: "root"})
	}

	build := s.sandbox.Run(ctx, session, "xelatex -interaction=nonstopmode -halt-on-error resume.tex", ports.RunOpts{Timeout: latexCompileTimeout})
	if build.ExitCode != 0 {
		sink.Appendf("xelatex failed: %s", strings.TrimSpace(build.Stderr))
		return "", session.ID
	}

	pdf := s.sandbox.Run(ctx, session, "base64 -w 0 resume.pdf", ports.RunOpts{})
	sink.Appendf("Resume compiled to PDF inside sandbox.")
	return strings.TrimSpace(pdf.Stdout), session.ID
}
