package model

import (
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
)

const (
	DefaultDemonstrationLookahead = 72 * time.Hour
	DefaultServiceOrderLookahead  = 48 * time.Hour

	scheduleLayout = "02/01/2006 15:04"
)

// ProfileTexts holds text/template sources for the messages of one work
// item kind. Templates receive a MessageData value.
type ProfileTexts struct {
	PrepareTitle    string
	PrepareMessage  string
	PrepareNote     string
	EscalateTitle   string
	EscalateMessage string
	EscalateNote    string
}

// MessageData is the input of profile templates
type MessageData struct {
	Subject    string
	ClientName string
	When       string
}

// MessageContent is a rendered notification title/message and task note
type MessageContent struct {
	Title   string
	Message string
	Note    string
}

// DefaultProfileTexts returns the built-in texts for a work item kind
func DefaultProfileTexts(kind types.WorkItemKind) ProfileTexts {
	switch kind {
	case types.WorkItemKindServiceOrder:
		return ProfileTexts{
			PrepareTitle:    "Pré-checagem de Serviço",
			PrepareMessage:  "Serviço {{.Subject}} para {{.ClientName}} em {{.When}}. Faça a pré-checagem (equipamentos/insumos).",
			PrepareNote:     "Pré-checagem do serviço {{.Subject}} para {{.ClientName}} (até {{.When}})",
			EscalateTitle:   "Serviço Sem Técnico Atribuído",
			EscalateMessage: "Serviço {{.Subject}} para {{.ClientName}} em {{.When}} sem responsável. Atribuir técnico.",
			EscalateNote:    "Atribuir técnico ao serviço {{.Subject}} para {{.ClientName}} ({{.When}})",
		}
	default:
		return ProfileTexts{
			PrepareTitle:    "Preparação de Demonstração",
			PrepareMessage:  "Preparar {{.Subject}} para {{.ClientName}} em {{.When}} (materiais/equipamentos).",
			PrepareNote:     "Preparar {{.Subject}} para {{.ClientName}} (até {{.When}})",
			EscalateTitle:   "Demonstração Sem Responsável",
			EscalateMessage: "Demonstração ({{.Subject}}) para {{.ClientName}} em {{.When}} sem responsável. Atribuir equipe.",
			EscalateNote:    "Atribuir responsáveis à {{.Subject}} para {{.ClientName}} ({{.When}})",
		}
	}
}

type contentTemplates struct {
	title   *template.Template
	message *template.Template
	note    *template.Template
}

// WorkItemProfile parameterizes the due-soon routine for one work item kind:
// how far ahead to look, which task owners get, and what the messages say.
type WorkItemProfile struct {
	Kind          types.WorkItemKind
	Lookahead     time.Duration
	OwnedTaskType types.TaskType
	Location      *time.Location

	prepare  contentTemplates
	escalate contentTemplates
}

// NewWorkItemProfile validates the parameters and compiles the templates
func NewWorkItemProfile(kind types.WorkItemKind, lookahead time.Duration, ownedTaskType types.TaskType, texts ProfileTexts, loc *time.Location) (*WorkItemProfile, error) {
	if !kind.IsValid() {
		return nil, goerr.New("invalid work item kind", goerr.V("kind", kind))
	}
	if lookahead <= 0 {
		return nil, goerr.New("lookahead must be positive", goerr.V("kind", kind), goerr.V("lookahead", lookahead))
	}
	if !ownedTaskType.IsValid() {
		return nil, goerr.New("invalid task type", goerr.V("kind", kind), goerr.V("task_type", ownedTaskType))
	}
	if loc == nil {
		loc = time.UTC
	}

	p := &WorkItemProfile{
		Kind:          kind,
		Lookahead:     lookahead,
		OwnedTaskType: ownedTaskType,
		Location:      loc,
	}

	var err error
	if p.prepare, err = compileContent(kind, "prepare", texts.PrepareTitle, texts.PrepareMessage, texts.PrepareNote); err != nil {
		return nil, err
	}
	if p.escalate, err = compileContent(kind, "escalate", texts.EscalateTitle, texts.EscalateMessage, texts.EscalateNote); err != nil {
		return nil, err
	}

	return p, nil
}

func compileContent(kind types.WorkItemKind, name, title, message, note string) (contentTemplates, error) {
	var c contentTemplates
	var err error
	parse := func(part, src string) *template.Template {
		if err != nil {
			return nil
		}
		var t *template.Template
		t, err = template.New(kind.String() + "." + name + "." + part).Option("missingkey=error").Parse(src)
		if err != nil {
			err = goerr.Wrap(err, "failed to parse profile template", goerr.V("kind", kind), goerr.V("template", name+"."+part))
		}
		return t
	}
	c.title = parse("title", title)
	c.message = parse("message", message)
	c.note = parse("note", note)
	return c, err
}

// Window returns the inclusive scan window starting at now
func (p *WorkItemProfile) Window(now time.Time) (time.Time, time.Time) {
	return now, now.Add(p.Lookahead)
}

// PrepareContent renders the texts sent to an owner of the item
func (p *WorkItemProfile) PrepareContent(item *WorkItem) (*MessageContent, error) {
	return p.render(p.prepare, item)
}

// EscalateContent renders the texts sent to administrators for an unowned item
func (p *WorkItemProfile) EscalateContent(item *WorkItem) (*MessageContent, error) {
	return p.render(p.escalate, item)
}

func (p *WorkItemProfile) render(c contentTemplates, item *WorkItem) (*MessageContent, error) {
	data := MessageData{
		Subject:    item.Subject(),
		ClientName: item.DisplayClientName(),
		When:       item.ScheduledAt.In(p.Location).Format(scheduleLayout),
	}

	exec := func(t *template.Template) (string, error) {
		var b strings.Builder
		if err := t.Execute(&b, data); err != nil {
			return "", goerr.Wrap(err, "failed to render profile template",
				goerr.V("template", t.Name()),
				goerr.V("work_item_id", item.ID))
		}
		return b.String(), nil
	}

	var content MessageContent
	var err error
	if content.Title, err = exec(c.title); err != nil {
		return nil, err
	}
	if content.Message, err = exec(c.message); err != nil {
		return nil, err
	}
	if content.Note, err = exec(c.note); err != nil {
		return nil, err
	}
	return &content, nil
}

// ProfileRegistry maps each work item kind to its profile
type ProfileRegistry struct {
	profiles map[types.WorkItemKind]*WorkItemProfile
}

// NewProfileRegistry builds a registry. Later profiles replace earlier ones
// of the same kind.
func NewProfileRegistry(profiles ...*WorkItemProfile) *ProfileRegistry {
	r := &ProfileRegistry{profiles: make(map[types.WorkItemKind]*WorkItemProfile)}
	for _, p := range profiles {
		r.profiles[p.Kind] = p
	}
	return r
}

// DefaultProfileParams returns the built-in lookahead and owner task type of kind
func DefaultProfileParams(kind types.WorkItemKind) (time.Duration, types.TaskType) {
	if kind == types.WorkItemKindServiceOrder {
		return DefaultServiceOrderLookahead, types.TaskTypeServicePrecheck
	}
	return DefaultDemonstrationLookahead, types.TaskTypeDemoPrepare
}

// DefaultProfileRegistry returns profiles with built-in lookaheads and texts
func DefaultProfileRegistry(loc *time.Location) (*ProfileRegistry, error) {
	var profiles []*WorkItemProfile
	for _, kind := range types.AllWorkItemKinds() {
		lookahead, taskType := DefaultProfileParams(kind)
		p, err := NewWorkItemProfile(kind, lookahead, taskType, DefaultProfileTexts(kind), loc)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return NewProfileRegistry(profiles...), nil
}

// Get returns the profile of kind and whether it exists
func (r *ProfileRegistry) Get(kind types.WorkItemKind) (*WorkItemProfile, bool) {
	p, ok := r.profiles[kind]
	return p, ok
}

// Kinds returns registered kinds in a stable order
func (r *ProfileRegistry) Kinds() []types.WorkItemKind {
	kinds := make([]types.WorkItemKind, 0, len(r.profiles))
	for _, k := range types.AllWorkItemKinds() {
		if _, ok := r.profiles[k]; ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}
