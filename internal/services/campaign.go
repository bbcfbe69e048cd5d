package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alumnet/apiserver/internal/cache"
	"github.com/alumnet/apiserver/internal/mailer"
	"github.com/alumnet/apiserver/internal/mq"
	"github.com/alumnet/apiserver/types"
	"go.uber.org/zap"
)

// CampaignChannel is the queue carrying campaign jobs to the worker.
const CampaignChannel = "email-campaigns"

// Publisher hands JSON jobs to a queue.
type Publisher interface {
	PublishJSON(ctx context.Context, channel string, v any) (string, error)
}

// CampaignRequest is the body of a campaign submission.
type CampaignRequest struct {
	Group   string `json:"group" validate:"required"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required"`
}

// CampaignService resolves recipient groups and queues email campaigns.
type CampaignService struct {
	users     UserRepository
	publisher Publisher
	cache     cache.Cache
	cacheTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewCampaignService constructs a CampaignService. publisher may be nil, in
// which case Send reports the feature as unavailable.
func NewCampaignService(users UserRepository, publisher Publisher, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *CampaignService {
	return &CampaignService{
		users:     users,
		publisher: publisher,
		cache:     c,
		cacheTTL:  cacheTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// Groups lists the addressable groups with their current sizes: everyone,
// students, alumni, then one group per alumni class year, newest first.
func (s *CampaignService) Groups(ctx context.Context, actor Actor) ([]types.CampaignGroup, error) {
	if !actor.IsAdmin() {
		return nil, forbiddenError("Not authorized")
	}
	return readThrough(ctx, s.cache, s.cacheTTL, s.logger, groupsCacheKey, s.loadGroups)
}

func (s *CampaignService) loadGroups(ctx context.Context) ([]types.CampaignGroup, error) {
	users, err := s.users.List(ctx, types.UserFilter{})
	if err != nil {
		return nil, err
	}

	var students, alumni int
	classes := map[int]int{}
	for _, u := range users {
		switch u.Role {
		case types.RoleStudent:
			students++
		case types.RoleAlumni:
			alumni++
			if u.GraduationYear != nil {
				classes[*u.GraduationYear]++
			}
		}
	}

	groups := []types.CampaignGroup{
		{Group: types.GroupAll, Label: "All users", Count: len(users)},
		{Group: types.GroupStudents, Label: "Students", Count: students},
		{Group: types.GroupAlumni, Label: "Alumni", Count: alumni},
	}
	years := make([]int, 0, len(classes))
	for year := range classes {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	for _, year := range years {
		groups = append(groups, types.CampaignGroup{
			Group: fmt.Sprintf("%s%d", types.ClassGroupPrefix, year),
			Label: fmt.Sprintf("Class of %d", year),
			Count: classes[year],
		})
	}
	return groups, nil
}

// Send resolves the group and queues one job for the worker.
func (s *CampaignService) Send(ctx context.Context, actor Actor, req CampaignRequest) (types.Campaign, error) {
	if !actor.IsAdmin() {
		return types.Campaign{}, forbiddenError("Not authorized")
	}
	if s.publisher == nil {
		return types.Campaign{}, newError(ErrUnavailable, "Email campaigns are not configured")
	}
	req.Group = strings.ToLower(strings.TrimSpace(req.Group))
	req.Subject = strings.TrimSpace(req.Subject)
	req.Message = strings.TrimSpace(req.Message)
	if err := validateStruct(req); err != nil {
		return types.Campaign{}, err
	}

	filter, err := groupFilter(req.Group)
	if err != nil {
		return types.Campaign{}, err
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return types.Campaign{}, err
	}
	if len(users) == 0 {
		return types.Campaign{}, validationError("No recipients in group " + req.Group)
	}

	campaign := types.Campaign{
		Group:       req.Group,
		Subject:     req.Subject,
		Message:     req.Message,
		Recipients:  make([]string, 0, len(users)),
		RequestedBy: actor.ID,
		QueuedAt:    s.now().UTC(),
	}
	for _, u := range users {
		campaign.Recipients = append(campaign.Recipients, u.Email)
	}

	id, err := s.publisher.PublishJSON(ctx, CampaignChannel, campaign)
	if err != nil {
		return types.Campaign{}, fmt.Errorf("queue campaign: %w", err)
	}
	campaign.MessageID = id
	s.logger.Info("campaign queued",
		zap.String("group", campaign.Group),
		zap.Int("recipients", len(campaign.Recipients)),
		zap.String("message_id", id),
	)
	return campaign, nil
}

func groupFilter(group string) (types.UserFilter, error) {
	switch group {
	case types.GroupAll:
		return types.UserFilter{}, nil
	case types.GroupStudents:
		return types.UserFilter{Role: types.RoleStudent}, nil
	case types.GroupAlumni:
		return types.UserFilter{Role: types.RoleAlumni}, nil
	}
	if raw, ok := strings.CutPrefix(group, types.ClassGroupPrefix); ok {
		year, err := strconv.Atoi(raw)
		if err == nil && year > 0 {
			return types.UserFilter{Role: types.RoleAlumni, GraduationYear: year}, nil
		}
	}
	return types.UserFilter{}, validationError("Unknown group " + group)
}

// CampaignDelivery consumes queued campaigns and mails every recipient.
type CampaignDelivery struct {
	sender mailer.Sender
	logger *zap.Logger
}

func NewCampaignDelivery(sender mailer.Sender, logger *zap.Logger) *CampaignDelivery {
	return &CampaignDelivery{sender: sender, logger: logger}
}

// Handle is an mq.Handler. Individual delivery failures are logged; the
// message is only retried when no recipient could be reached.
func (d *CampaignDelivery) Handle(ctx context.Context, msg mq.Message) error {
	var campaign types.Campaign
	if err := msg.Decode(&campaign); err != nil {
		d.logger.Error("dropping malformed campaign", zap.String("message_id", msg.ID), zap.Error(err))
		return nil
	}

	var (
		sent int
		errs []error
	)
	for _, to := range campaign.Recipients {
		err := d.sender.Send(ctx, mailer.Mail{
			To:      to,
			Subject: campaign.Subject,
			Body:    campaign.Message,
		})
		if err != nil {
			errs = append(errs, err)
			d.logger.Warn("campaign delivery failed", zap.String("to", to), zap.Error(err))
			continue
		}
		sent++
	}

	d.logger.Info("campaign delivered",
		zap.String("message_id", msg.ID),
		zap.String("group", campaign.Group),
		zap.Int("sent", sent),
		zap.Int("failed", len(errs)),
	)
	if sent == 0 && len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
