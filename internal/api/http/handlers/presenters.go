package handlers

import (
	"github.com/spec-kit/callcenter-service/internal/api/dto"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/service"
)

func customerResponse(c *domain.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Gender:    string(c.Gender),
	}
}

func profileResponse(p *domain.CustomerProfile) dto.CustomerProfileResponse {
	resp := dto.CustomerProfileResponse{
		CustomerResponse: customerResponse(&p.Customer),
		Username:         p.Username,
		Email:            p.Contact.Email,
		Phone:            p.Contact.Phone,
	}
	if p.Address != nil {
		resp.Address = &dto.AddressResponse{
			City:        p.Address.City,
			Country:     p.Address.Country,
			AddressLine: p.Address.AddressLine,
			PostalCode:  p.Address.PostalCode,
		}
	}
	return resp
}

func authResponse(r *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Token:       r.Token,
		ExpiresAt:   r.ExpiresAt,
		SubjectType: string(r.SubjectType),
		SubjectID:   r.SubjectID,
	}
}

func complaintSummary(v *domain.ComplaintView) dto.ComplaintSummary {
	return dto.ComplaintSummary{
		ID:              v.ID,
		Title:           v.Title,
		Status:          v.StatusName,
		StatusID:        v.StatusID,
		Priority:        v.PriorityName,
		PriorityID:      v.PriorityID,
		Category:        v.CategoryName,
		ProductCode:     v.ProductCode,
		CustomerID:      v.CustomerID,
		CustomerName:    v.CustomerName,
		AssignedStaffID: v.AssignedStaffID,
		AssignedStaff:   v.StaffName,
		CallID:          v.CallID,
		IsActive:        v.IsActive,
		CreatedAt:       v.CreatedAt,
		LastUpdatedAt:   v.LastUpdatedAt,
		ClosedAt:        v.ClosedAt,
	}
}

func complaintSummaries(views []domain.ComplaintView) []dto.ComplaintSummary {
	out := make([]dto.ComplaintSummary, 0, len(views))
	for i := range views {
		out = append(out, complaintSummary(&views[i]))
	}
	return out
}

func complaintDetail(v *domain.ComplaintView) dto.ComplaintDetailResponse {
	return dto.ComplaintDetailResponse{ComplaintSummary: complaintSummary(v), Description: v.Description}
}

func actionResponses(actions []domain.ComplaintAction) []dto.ComplaintActionResponse {
	out := make([]dto.ComplaintActionResponse, 0, len(actions))
	for _, a := range actions {
		out = append(out, actionResponse(&a))
	}
	return out
}

func actionResponse(a *domain.ComplaintAction) dto.ComplaintActionResponse {
	return dto.ComplaintActionResponse{
		ID:            a.ID,
		ActionType:    a.ActionType,
		OldStatusID:   a.OldStatusID,
		NewStatusID:   a.NewStatusID,
		PerformedByID: a.PerformedByID,
		ActionDate:    a.ActionDate,
	}
}

func surveyResponse(s *domain.SatisfactionSurvey) dto.SurveyResponse {
	return dto.SurveyResponse{
		ID:          s.ID,
		ComplaintID: s.ComplaintID,
		CallID:      s.CallID,
		Rating:      s.Rating,
		CreatedAt:   s.CreatedAt,
	}
}

func sessionResponse(s *domain.CallSession) dto.CallSessionResponse {
	return dto.CallSessionResponse{ID: s.ID, StaffID: s.StaffID, StartedAt: s.StartedAt, State: string(s.State)}
}

func endCallResponse(r *service.EndCallResult) dto.EndCallResponse {
	warnings := r.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return dto.EndCallResponse{
		CallID:           r.CallID,
		DurationSec:      r.DurationSec,
		ComplaintCreated: r.ComplaintCreated,
		ComplaintID:      r.ComplaintID,
		CustomerID:       r.CustomerID,
		Warnings:         warnings,
	}
}

func lookupsResponse(l *domain.Lookups) dto.LookupsResponse {
	resp := dto.LookupsResponse{
		CallTypes:   make([]dto.LookupItem, 0, len(l.CallTypes)),
		CallTopics:  make([]dto.CallTopicItem, 0, len(l.CallTopics)),
		CallResults: make([]dto.LookupItem, 0, len(l.CallResults)),
		Categories:  make([]dto.LookupItem, 0, len(l.Categories)),
	}
	for _, t := range l.CallTypes {
		resp.CallTypes = append(resp.CallTypes, dto.LookupItem{ID: t.ID, Name: t.Name})
	}
	for _, t := range l.CallTopics {
		resp.CallTopics = append(resp.CallTopics, dto.CallTopicItem{ID: t.ID, Name: t.Name, IsComplaintTopic: t.ClassifiesAsComplaint()})
	}
	for _, r := range l.CallResults {
		resp.CallResults = append(resp.CallResults, dto.LookupItem{ID: r.ID, Name: r.Name})
	}
	for _, c := range l.Categories {
		resp.Categories = append(resp.Categories, dto.LookupItem{ID: c.ID, Name: c.Name})
	}
	return resp
}

func customerInput(req *dto.CustomerRegisterRequest) service.CustomerInput {
	return service.CustomerInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Gender:          req.Gender,
		Email:           req.Email,
		Phone:           req.Phone,
		City:            req.City,
		Country:         req.Country,
		AddressLine:     req.AddressLine,
		PostalCode:      req.PostalCode,
		Username:        req.Username,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	}
}
