package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flemzord/chefbot/internal/chat"
	"github.com/flemzord/chefbot/internal/core"
	"github.com/flemzord/chefbot/internal/provider/providertest"
)

const stubProviderID core.ModuleID = "provider.stub"

const stubReply = `{"type":"conversation","message":"How about a tomato soup?"}`

var stubProvider = &providertest.MockProvider{CompleteFunc: providertest.Reply(stubReply)}

// stubProviderModule registers stubProvider as its service.
type stubProviderModule struct{}

func (stubProviderModule) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  stubProviderID,
		New: func() core.Module { return stubProviderModule{} },
	}
}

func (stubProviderModule) Provision(ctx *core.AppContext) error {
	ctx.RegisterService(string(stubProviderID), stubProvider)
	return nil
}

func init() {
	core.RegisterModule(stubProviderModule{})
}

const baseConfig = `version: "1"
memory:
  max_tokens: 2000
  tokenizer: estimate
  summarizer:
    target_tokens: 100
bot:
  provider: provider.stub
modules:
  provider.stub:
    api_key: stub-literal-secret-value
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chefbot.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestResolveConfigPath_XDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	cfgDir := filepath.Join(dir, "chefbot")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfgPath := filepath.Join(cfgDir, "chefbot.yaml")
	if err := os.WriteFile(cfgPath, []byte("version: \"1\""), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := ResolveConfigPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != cfgPath {
		t.Errorf("got %q, want %q", got, cfgPath)
	}
}

func TestResolveConfigPath_NotFound(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/nonexistent/path")

	// Also ensure there's no chefbot.yaml in the current directory.
	t.Chdir(t.TempDir())

	_, err := ResolveConfigPath()
	if err == nil {
		t.Error("expected error when no config file found")
	}
}

func TestDefaultConfigPath_XDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := DefaultConfigPath(), "/custom/config/chefbot/chefbot.yaml"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDefaultDataDir_XDGDataHome(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	got := DefaultDataDir()
	want := "/custom/data/chefbot"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDefaultDataDir_Fallback(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")

	got := DefaultDataDir()
	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".local", "share", "chefbot")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDefaultWorkspace(t *testing.T) {
	got := DefaultWorkspace()
	cwd, _ := os.Getwd()
	if got != cwd {
		t.Errorf("got %q, want %q", got, cwd)
	}
}

func TestSetup_InvalidConfigPath(t *testing.T) {
	_, err := Setup(context.Background(), RunParams{ConfigPath: "/nonexistent/config.yaml"}, ModeChat)
	if err == nil {
		t.Error("expected error for invalid config path")
	}
}

func TestSetup_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "version: \"2\"\nmodules: {}\n")
	_, err := Setup(context.Background(), RunParams{ConfigPath: path}, ModeChat)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "unsupported version") {
		t.Errorf("error = %v, want unsupported version", err)
	}
}

func TestSetup_WiresBot(t *testing.T) {
	var logs bytes.Buffer
	rt, err := Setup(context.Background(), RunParams{
		ConfigPath: writeConfig(t, baseConfig),
		DataDir:    t.TempDir(),
		LogOutput:  &logs,
	}, ModeChat)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close(context.Background()) })

	if rt.Config.Memory.ConversationID != "recipe-bot" {
		t.Errorf("ConversationID = %q, want default", rt.Config.Memory.ConversationID)
	}
	if got := rt.Bot.Memory().MaxTokens(); got != 2000 {
		t.Errorf("MaxTokens = %d, want 2000", got)
	}

	resp, err := rt.Bot.Reply(context.Background(), "setup-test", "something with tomatoes")
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if resp.Kind != chat.KindConversation || resp.Message != "How about a tomato soup?" {
		t.Errorf("resp = %+v", resp)
	}

	if !strings.Contains(logs.String(), "memory wired") {
		t.Errorf("logs missing wiring line:\n%s", logs.String())
	}
}

func TestSetup_RedactsConfigSecrets(t *testing.T) {
	var logs bytes.Buffer
	rt, err := Setup(context.Background(), RunParams{
		ConfigPath: writeConfig(t, baseConfig),
		DataDir:    t.TempDir(),
		LogOutput:  &logs,
	}, ModeChat)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close(context.Background()) })

	rt.Logger.Info("echo", "value", "key=stub-literal-secret-value")

	if strings.Contains(logs.String(), "stub-literal-secret-value") {
		t.Errorf("secret leaked into logs:\n%s", logs.String())
	}
}

func TestSetup_ChatModeSkipsGateway(t *testing.T) {
	cfg := baseConfig + `  gateway.http:
    bind: "127.0.0.1:0"
`
	var logs bytes.Buffer
	rt, err := Setup(context.Background(), RunParams{
		ConfigPath: writeConfig(t, cfg),
		DataDir:    t.TempDir(),
		LogOutput:  &logs,
	}, ModeChat)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close(context.Background()) })

	if strings.Contains(logs.String(), "gateway.http") {
		t.Errorf("gateway loaded in chat mode:\n%s", logs.String())
	}
	if !strings.Contains(logs.String(), "provider.stub") {
		t.Errorf("provider not loaded:\n%s", logs.String())
	}
}

func TestModuleIDs(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, baseConfig+"  gateway.http: {}\n")
	cfg, _, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if got := moduleIDs(cfg, ModeServe); len(got) != 2 {
		t.Errorf("serve ids = %v, want 2 modules", got)
	}
	got := moduleIDs(cfg, ModeChat)
	if len(got) != 1 || got[0] != string(stubProviderID) {
		t.Errorf("chat ids = %v, want [%s]", got, stubProviderID)
	}
}

func TestChat_EndToEnd(t *testing.T) {
	var out bytes.Buffer
	err := Chat(context.Background(), RunParams{
		ConfigPath: writeConfig(t, baseConfig),
		DataDir:    t.TempDir(),
		LogOutput:  &bytes.Buffer{},
	}, "", strings.NewReader("I like tomatoes\nbye\n"), &out)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	got := out.String()
	for _, want := range []string{chat.Greeting, "Bot: How about a tomato soup?", "Bot: " + chat.Goodbye} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	ids, err := Check(writeConfig(t, baseConfig))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(ids) != 1 || ids[0] != string(stubProviderID) {
		t.Errorf("ids = %v", ids)
	}
}

func TestCheck_UnknownModule(t *testing.T) {
	t.Parallel()

	_, err := Check(writeConfig(t, baseConfig+"  tool.nope: {}\n"))
	if err == nil || !strings.Contains(err.Error(), `unknown module "tool.nope"`) {
		t.Errorf("err = %v, want unknown module", err)
	}
}
