package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/grabhealth-next/internal/constants"
)

func TestEnsureReferralCodeIsLazyAndStable(t *testing.T) {
	env := newServiceTestEnv(t)

	user := env.createUser(t, "user@example.com", constants.RoleCustomer)
	if user.ReferralCode != nil {
		t.Fatalf("new user should not carry a referral code")
	}

	code, err := env.referralService.EnsureReferralCode(user.ID)
	if err != nil {
		t.Fatalf("ensure referral code failed: %v", err)
	}
	if len(code) != constants.ReferralCodeLength {
		t.Fatalf("code length want %d got %d", constants.ReferralCodeLength, len(code))
	}

	again, err := env.referralService.EnsureReferralCode(user.ID)
	if err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}
	if again != code {
		t.Fatalf("code must be stable, first %s second %s", code, again)
	}
}

func TestAttachReferralRejectsInvalidCode(t *testing.T) {
	env := newServiceTestEnv(t)

	user := env.createUser(t, "user@example.com", constants.RoleCustomer)
	if err := env.referralService.AttachReferral(user.ID, "NOSUCHCODE"); !errors.Is(err, ErrReferralCodeInvalid) {
		t.Fatalf("want ErrReferralCodeInvalid got %v", err)
	}
}

func TestAttachReferralRejectsDisabledReferrer(t *testing.T) {
	env := newServiceTestEnv(t)

	referrer := env.createUser(t, "ref@example.com", constants.RoleSales)
	code, err := env.referralService.EnsureReferralCode(referrer.ID)
	if err != nil {
		t.Fatalf("ensure code failed: %v", err)
	}
	referrer.Status = constants.UserStatusDisabled
	if err := env.userRepo.Update(referrer); err != nil {
		t.Fatalf("disable referrer failed: %v", err)
	}

	user := env.createUser(t, "user@example.com", constants.RoleCustomer)
	if err := env.referralService.AttachReferral(user.ID, code); !errors.Is(err, ErrReferralCodeInvalid) {
		t.Fatalf("disabled referrer code must be invalid, got %v", err)
	}
}

func TestAttachReferralRejectsSelfReferral(t *testing.T) {
	env := newServiceTestEnv(t)

	user := env.createUser(t, "user@example.com", constants.RoleCustomer)
	code, err := env.referralService.EnsureReferralCode(user.ID)
	if err != nil {
		t.Fatalf("ensure code failed: %v", err)
	}
	if err := env.referralService.AttachReferral(user.ID, code); !errors.Is(err, ErrSelfReferral) {
		t.Fatalf("want ErrSelfReferral got %v", err)
	}
}

func TestAttachReferralRejectsSecondAttachment(t *testing.T) {
	env := newServiceTestEnv(t)

	first := env.createUser(t, "first@example.com", constants.RoleSales)
	second := env.createUser(t, "second@example.com", constants.RoleSales)
	user := env.createUser(t, "user@example.com", constants.RoleCustomer)

	firstCode, err := env.referralService.EnsureReferralCode(first.ID)
	if err != nil {
		t.Fatalf("ensure code failed: %v", err)
	}
	secondCode, err := env.referralService.EnsureReferralCode(second.ID)
	if err != nil {
		t.Fatalf("ensure code failed: %v", err)
	}

	if err := env.referralService.AttachReferral(user.ID, firstCode); err != nil {
		t.Fatalf("first attach failed: %v", err)
	}
	if err := env.referralService.AttachReferral(user.ID, secondCode); !errors.Is(err, ErrAlreadyReferred) {
		t.Fatalf("want ErrAlreadyReferred got %v", err)
	}

	edge, err := env.networkRepo.GetEdgeByUserID(user.ID)
	if err != nil || edge == nil {
		t.Fatalf("edge missing: %v", err)
	}
	if edge.ParentID != first.ID {
		t.Fatalf("edge must keep first referrer, want %d got %d", first.ID, edge.ParentID)
	}
}

func TestAttachReferralNormalizesCode(t *testing.T) {
	env := newServiceTestEnv(t)

	referrer := env.createUser(t, "ref@example.com", constants.RoleSales)
	code, err := env.referralService.EnsureReferralCode(referrer.ID)
	if err != nil {
		t.Fatalf("ensure code failed: %v", err)
	}

	user := env.createUser(t, "user@example.com", constants.RoleCustomer)
	// 小写和首尾空格可以接受
	if err := env.referralService.AttachReferral(user.ID, "  "+strings.ToLower(code)+"  "); err != nil {
		t.Fatalf("normalized code should attach, got %v", err)
	}
}

func TestGetUplineNearestFirst(t *testing.T) {
	env := newServiceTestEnv(t)

	a := env.createUser(t, "a@example.com", constants.RoleLeader)
	b := env.createUser(t, "b@example.com", constants.RoleSales)
	c := env.createUser(t, "c@example.com", constants.RoleCustomer)
	env.linkReferral(t, b.ID, a.ID)
	env.linkReferral(t, c.ID, b.ID)

	upline, err := env.referralService.GetUpline(c.ID)
	if err != nil {
		t.Fatalf("get upline failed: %v", err)
	}
	if len(upline) != 2 {
		t.Fatalf("upline length want 2 got %d", len(upline))
	}
	if upline[0].Level != 1 || upline[0].UserID != b.ID {
		t.Fatalf("level 1 want user %d got %+v", b.ID, upline[0])
	}
	if upline[1].Level != 2 || upline[1].UserID != a.ID {
		t.Fatalf("level 2 want user %d got %+v", a.ID, upline[1])
	}
}

func TestGetUplineHonorsMaxHops(t *testing.T) {
	env := newServiceTestEnv(t)

	limited := NewReferralService(env.userRepo, env.networkRepo, 1)

	a := env.createUser(t, "a@example.com", constants.RoleLeader)
	b := env.createUser(t, "b@example.com", constants.RoleSales)
	c := env.createUser(t, "c@example.com", constants.RoleCustomer)
	env.linkReferral(t, b.ID, a.ID)
	env.linkReferral(t, c.ID, b.ID)

	upline, err := limited.GetUpline(c.ID)
	if err != nil {
		t.Fatalf("get upline failed: %v", err)
	}
	if len(upline) != 1 {
		t.Fatalf("capped upline length want 1 got %d", len(upline))
	}
}

func TestGetDownlineListsDescendants(t *testing.T) {
	env := newServiceTestEnv(t)

	root := env.createUser(t, "root@example.com", constants.RoleLeader)
	child := env.createUser(t, "child@example.com", constants.RoleSales)
	grand := env.createUser(t, "grand@example.com", constants.RoleCustomer)
	env.linkReferral(t, child.ID, root.ID)
	env.linkReferral(t, grand.ID, child.ID)

	downline, err := env.referralService.GetDownline(root.ID)
	if err != nil {
		t.Fatalf("get downline failed: %v", err)
	}
	if len(downline) != 2 {
		t.Fatalf("downline length want 2 got %d", len(downline))
	}
	levels := map[uint]int{}
	for _, entry := range downline {
		levels[entry.UserID] = entry.Level
	}
	if levels[child.ID] != 1 {
		t.Fatalf("child level want 1 got %d", levels[child.ID])
	}
	if levels[grand.ID] != 2 {
		t.Fatalf("grandchild level want 2 got %d", levels[grand.ID])
	}

	count, err := env.referralService.CountDirectDownline(root.ID)
	if err != nil {
		t.Fatalf("count direct downline failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("direct downline want 1 got %d", count)
	}
}
