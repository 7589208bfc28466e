package swarm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

const tokenPrefix = "SWMTKN-"

// Token is a role-scoped swarm join token. Its String form is redacted so a
// token never ends up in logs; use string(t) where the value is needed.
type Token string

func (t Token) String() string {
	if t == "" {
		return ""
	}
	return tokenPrefix + "<redacted>"
}

// GoString keeps %#v from printing the value.
func (t Token) GoString() string {
	return `swarm.Token("` + t.String() + `")`
}

// TokenProvider supplies join tokens for one swarm.
type TokenProvider interface {
	ManagerToken(ctx context.Context) (Token, error)
	WorkerToken(ctx context.Context) (Token, error)
}

// ScrapingTokenProvider reads tokens from `docker swarm join-token` output
// on the initializer.
type ScrapingTokenProvider struct {
	exec        Executor
	initializer string
}

// NewScrapingTokenProvider returns a provider that queries initializer.
func NewScrapingTokenProvider(exec Executor, initializer string) *ScrapingTokenProvider {
	return &ScrapingTokenProvider{exec: exec, initializer: initializer}
}

func (p *ScrapingTokenProvider) ManagerToken(ctx context.Context) (Token, error) {
	return p.fetch(ctx, RoleManager)
}

func (p *ScrapingTokenProvider) WorkerToken(ctx context.Context) (Token, error) {
	return p.fetch(ctx, RoleWorker)
}

func (p *ScrapingTokenProvider) fetch(ctx context.Context, role Role) (Token, error) {
	out, err := p.exec.Run(ctx, p.initializer, JoinTokenCommand(role))
	if err != nil {
		return "", fmt.Errorf("failed to query %s join token on %s: %w", role, p.initializer, err)
	}
	return ParseJoinToken(out)
}

// ParseJoinToken extracts the token from join-token output: the fifth
// whitespace-separated field of the first line containing "token", as in
//
//	docker swarm join --token SWMTKN-1-... 10.0.0.2:2377
func ParseJoinToken(output string) (Token, error) {
	for line := range strings.Lines(output) {
		if !strings.Contains(line, "token") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return "", fmt.Errorf("%w: line has %d fields", ErrMalformedToken, len(fields))
		}
		if !strings.HasPrefix(fields[4], tokenPrefix) {
			return "", fmt.Errorf("%w: field does not start with %s", ErrMalformedToken, tokenPrefix)
		}
		return Token(fields[4]), nil
	}
	return "", ErrTokenNotFound
}

// CachingTokenProvider fetches each role's token once. Failed fetches are
// not cached. Safe for concurrent use.
type CachingTokenProvider struct {
	next TokenProvider

	mu     sync.Mutex
	tokens map[Role]Token
}

// NewCachingTokenProvider wraps next.
func NewCachingTokenProvider(next TokenProvider) *CachingTokenProvider {
	return &CachingTokenProvider{next: next, tokens: map[Role]Token{}}
}

func (p *CachingTokenProvider) ManagerToken(ctx context.Context) (Token, error) {
	return p.get(ctx, RoleManager, p.next.ManagerToken)
}

func (p *CachingTokenProvider) WorkerToken(ctx context.Context) (Token, error) {
	return p.get(ctx, RoleWorker, p.next.WorkerToken)
}

func (p *CachingTokenProvider) get(ctx context.Context, role Role, fetch func(context.Context) (Token, error)) (Token, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.tokens[role]; ok {
		return t, nil
	}
	t, err := fetch(ctx)
	if err != nil {
		return "", err
	}
	p.tokens[role] = t
	return t, nil
}

// tokenFor returns the token for role from p.
func tokenFor(ctx context.Context, p TokenProvider, role Role) (Token, error) {
	if role == RoleManager {
		return p.ManagerToken(ctx)
	}
	return p.WorkerToken(ctx)
}
