// Package executor 负责攻击的实际执行：展开载荷、生成请求、
// 通过工作池并发发送，并把结果以事件回调的方式交回上层。
package executor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"raider/internal/logger"
	"raider/internal/payload"
	"raider/internal/pool"
	"raider/internal/tracker"
	"raider/pkg/domain"
)

// RequestSpec 一次待发送请求的完整描述
type RequestSpec struct {
	Method  string
	URL     string
	Headers [][2]string // 保持模板中的头部顺序
	Host    string
	Body    string
	Raw     string // 替换载荷后的原始请求文本
}

// SendResult 一次请求的发送结果
type SendResult struct {
	Status int
	Length int
	TimeMs int64
	Raw    string // 重组的原始响应文本
}

// Sender 发送一条请求。实现方负责超时与重定向策略。
type Sender interface {
	Send(ctx context.Context, spec *RequestSpec) (*SendResult, error)
}

// Event 攻击执行过程中的一个事件。Result 非空表示一条结果；
// Done 为真表示攻击结束（完成、停止或出错），是最后一个事件。
type Event struct {
	AttackID domain.AttackID
	TabID    domain.TabID
	Result   *domain.AttackResult
	Err      error
	Done     bool
}

// Executor 攻击执行器
type Executor struct {
	pool    *pool.Pool
	tracker *tracker.Tracker
	sender  Sender
	log     logger.Logger
}

// New 创建攻击执行器
func New(p *pool.Pool, t *tracker.Tracker, sender Sender, l logger.Logger) *Executor {
	if l == nil {
		l = logger.Nop()
	}
	return &Executor{pool: p, tracker: t, sender: sender, log: l}
}

// Run 异步执行一次攻击。展开载荷并生成全部请求，逐个经工作池发送，
// 每条结果通过 emit 回调交回；结束时发出 Done 事件。
// 返回攻击 ID，可用于通过注册表取消。
// emit 会在多个协程上被调用，调用方自行保证回调线程安全。
func (e *Executor) Run(ctx context.Context, spec *domain.AttackSpec, emit func(Event)) (domain.AttackID, error) {
	sets := make([][]string, 0, len(spec.Sets))
	for _, set := range spec.Sets {
		expanded, err := payload.Expand(set)
		if err != nil {
			return "", err
		}
		sets = append(sets, expanded)
	}

	combos, err := payload.Combinations(spec.AttackType, spec.Positions, sets)
	if err != nil {
		return "", err
	}

	attackID := domain.AttackID(uuid.NewString())
	runCtx, cancel := context.WithCancel(ctx)
	e.tracker.Register(attackID, spec.Tab, cancel)

	e.log.Info("攻击执行开始", "attackId", string(attackID), "tabId", string(spec.Tab), "attackType", string(spec.AttackType), "requests", len(combos))

	go e.run(runCtx, attackID, spec, combos, emit)
	return attackID, nil
}

// run 攻击执行主循环
func (e *Executor) run(ctx context.Context, attackID domain.AttackID, spec *domain.AttackSpec, combos [][]string, emit func(Event)) {
	var wg sync.WaitGroup

	for i, vec := range combos {
		select {
		case <-ctx.Done():
			goto done
		default:
		}

		raw := payload.Apply(spec.Template, spec.Positions, vec)
		req, err := ParseTemplate(raw, spec.Target.URL)
		if err != nil {
			e.log.Warn("请求模板解析失败，跳过该组合", "attackId", string(attackID), "index", i, "error", err.Error())
			continue
		}

		id := int64(i + 1)
		payloads := vec
		wg.Add(1)
		task := func() {
			defer wg.Done()
			e.send(ctx, attackID, spec.Tab, id, payloads, req, emit)
		}
		if err := e.pool.SubmitWait(ctx, task); err != nil {
			wg.Done()
			goto done
		}
	}

done:
	wg.Wait()
	e.tracker.Done(attackID)
	emit(Event{AttackID: attackID, TabID: spec.Tab, Err: ctx.Err(), Done: true})
	e.log.Info("攻击执行结束", "attackId", string(attackID), "tabId", string(spec.Tab))
}

// send 发送单条请求并上报结果事件
func (e *Executor) send(ctx context.Context, attackID domain.AttackID, tabID domain.TabID, id int64, payloads []string, req *RequestSpec, emit func(Event)) {
	select {
	case <-ctx.Done():
		return
	default:
	}

	result := &domain.AttackResult{
		ID:      id,
		Payload: payloads,
		Time:    time.Now().UnixMilli(),
		Request: req.Raw,
	}

	res, err := e.sender.Send(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		result.Status = 0
		result.Response = err.Error()
	} else {
		result.Status = res.Status
		result.Length = res.Length
		result.TimeMs = res.TimeMs
		result.Response = res.Raw
	}

	emit(Event{AttackID: attackID, TabID: tabID, Result: result})
}

// ParseTemplate 把原始 HTTP 请求文本解析为可发送的请求描述。
// 模板用 \n 作为行分隔符，首个空行之后是请求体。
// baseURL 只用来确定协议（http/https），主机名以 Host 头为准。
func ParseTemplate(raw, baseURL string) (*RequestSpec, error) {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, domain.ErrEmptyTemplate
	}

	parts := strings.Fields(lines[0])
	if len(parts) < 2 {
		return nil, fmt.Errorf("非法请求行: %q", lines[0])
	}
	method, path := parts[0], parts[1]

	spec := &RequestSpec{Method: method, Raw: raw}
	bodyStart := len(lines)
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		if line == "" {
			bodyStart = i + 1
			break
		}
		idx := strings.Index(line, ":")
		if idx == -1 {
			continue
		}
		name := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if strings.EqualFold(name, "Host") {
			spec.Host = value
			continue
		}
		spec.Headers = append(spec.Headers, [2]string{name, value})
	}
	if bodyStart < len(lines) {
		spec.Body = strings.Join(lines[bodyStart:], "\n")
	}

	if spec.Host == "" {
		return nil, fmt.Errorf("请求模板缺少 Host 头")
	}

	scheme := "http"
	if strings.HasPrefix(strings.ToLower(baseURL), "https://") {
		scheme = "https"
	}
	spec.URL = scheme + "://" + spec.Host + path
	return spec, nil
}

// HTTPSender 基于标准 HTTP 客户端的默认发送实现
type HTTPSender struct {
	client *http.Client
}

// HTTPSenderOptions 发送器配置
type HTTPSenderOptions struct {
	Timeout         time.Duration
	FollowRedirects bool
}

// NewHTTPSender 创建默认发送器
func NewHTTPSender(opts HTTPSenderOptions) *HTTPSender {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	client := &http.Client{Timeout: opts.Timeout}
	if !opts.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return &HTTPSender{client: client}
}

// Send 发送请求并把响应重组为原始文本
func (s *HTTPSender) Send(ctx context.Context, spec *RequestSpec) (*SendResult, error) {
	var body io.Reader
	if spec.Body != "" {
		body = strings.NewReader(spec.Body)
	}
	req, err := http.NewRequestWithContext(ctx, spec.Method, spec.URL, body)
	if err != nil {
		return nil, err
	}
	req.Host = spec.Host
	for _, h := range spec.Headers {
		// 内容长度由客户端按实际请求体计算
		if strings.EqualFold(h[0], "Content-Length") {
			continue
		}
		req.Header.Set(h[0], h[1])
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start).Milliseconds()

	var sb strings.Builder
	sb.WriteString(resp.Proto + " " + resp.Status + "\n")
	for name, values := range resp.Header {
		for _, v := range values {
			sb.WriteString(name + ": " + v + "\n")
		}
	}
	sb.WriteString("\n")
	sb.Write(respBody)

	return &SendResult{
		Status: resp.StatusCode,
		Length: len(respBody),
		TimeMs: elapsed,
		Raw:    sb.String(),
	}, nil
}
