// Package contextinfo gathers lightweight environment details that help a
// model produce commands matching the user's actual machine.
package contextinfo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/doeshing/tai-go/internal/domain"
	"github.com/doeshing/tai-go/internal/ports"
)

// source is one gatherable report. Sources only observe system state; they
// never modify anything.
type source struct {
	name        string
	description string
	preamble    string
	command     []string
	gather      func(context.Context) (string, error)
}

// BasicCollector reads the working directory, shell and OS identity, and
// exposes the extra named sources.
type BasicCollector struct {
	sources []source
}

// NewBasicCollector returns a collector for the local environment.
func NewBasicCollector() *BasicCollector {
	return &BasicCollector{sources: []source{
		{
			name:        "files",
			description: "List of files in the current directory",
			gather:      gatherFiles,
		},
		{
			name:        "processes",
			description: "List of processes",
			preamble:    "The following processes are running:",
			command:     []string{"ps", "-A", "-o", "pid,ppid,cmd"},
		},
		{
			name:        "users",
			description: "List of users",
			preamble:    "The following users are defined:",
			command:     []string{"getent", "passwd"},
		},
		{
			name:        "groups",
			description: "List of groups",
			preamble:    "The following groups are defined:",
			command:     []string{"getent", "group"},
		},
		{
			name:        "interfaces",
			description: "List of network interfaces",
			preamble:    "The following network interfaces are defined:",
			command:     []string{"ip", "link"},
		},
		{
			name:        "routes",
			description: "List of network routes",
			preamble:    "The following network routes are defined:",
			command:     []string{"ip", "route"},
		},
		{
			name:        "firewall",
			description: "List of iptables rules",
			preamble:    "The following firewall rules are defined:",
			command:     []string{"iptables", "-L"},
		},
	}}
}

// Collect assembles a context snapshot. File listing failures are not
// fatal; the snapshot is returned with whatever was gathered.
func (c *BasicCollector) Collect(ctx context.Context, cfg domain.Config) (domain.ContextSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return domain.ContextSnapshot{}, err
	}

	snapshot := domain.ContextSnapshot{
		Shell: shellName(),
		OS:    runtime.GOOS,
		User:  os.Getenv("USER"),
	}
	if wd, err := os.Getwd(); err == nil {
		snapshot.WorkingDir = wd
	}

	if cfg.Context.IncludeFiles && snapshot.WorkingDir != "" {
		snapshot.Files = listFiles(snapshot.WorkingDir, cfg.Context.MaxFiles)
	}

	return snapshot, nil
}

// Sources lists the gatherable extra sources in stable order.
func (c *BasicCollector) Sources() []domain.ContextSource {
	infos := make([]domain.ContextSource, 0, len(c.sources))
	for _, src := range c.sources {
		infos = append(infos, domain.ContextSource{Name: src.name, Description: src.description})
	}
	return infos
}

// Gather runs one named source and caps its report. Sources backed by
// external tools degrade to a "not accessible" note when the tool fails.
func (c *BasicCollector) Gather(ctx context.Context, name string) (string, error) {
	for _, src := range c.sources {
		if src.name != name {
			continue
		}
		report, err := c.run(ctx, src)
		if err != nil {
			return "", err
		}
		return truncate(report, domain.DefaultContextCap), nil
	}
	return "", fmt.Errorf("unknown context source %q", name)
}

func (c *BasicCollector) run(ctx context.Context, src source) (string, error) {
	if src.gather != nil {
		return src.gather(ctx)
	}
	out, err := exec.CommandContext(ctx, src.command[0], src.command[1:]...).Output()
	if err != nil {
		return fmt.Sprintf("%s %s not accessible", src.preamble, src.command[0]), nil
	}
	return src.preamble + "\n" + string(out), nil
}

func gatherFiles(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	names := listFiles(wd, 0)
	if len(names) == 0 {
		return fmt.Sprintf("The directory %s is empty", wd), nil
	}
	return fmt.Sprintf("The command is executed in folder %s containing the following list of files:\n%s",
		wd, strings.Join(names, "\n")), nil
}

func shellName() string {
	shell := os.Getenv("SHELL")
	if shell == "" {
		return "sh"
	}
	return filepath.Base(shell)
}

func listFiles(dir string, max int) []string {
	if max <= 0 {
		max = domain.DefaultContextMaxFiles
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, name)
		if len(names) >= max {
			break
		}
	}
	return names
}

func truncate(report string, limit int) string {
	if len(report) > limit {
		return report[:limit]
	}
	return report
}

var _ ports.ContextCollector = (*BasicCollector)(nil)
