package http

import (
	"net/http"

	"karkhana/internal/core"
	"karkhana/internal/finance"
)

func (s *Server) handleListStaff(w http.ResponseWriter, r *http.Request) {
	staff, err := s.repo.ListStaff(r.Context())
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	out := make([]staffResponse, 0, len(staff))
	for _, member := range staff {
		out = append(out, toStaffResponse(member))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) staffFromRequest(w http.ResponseWriter, r *http.Request) (core.Staff, bool) {
	var req staffRequest
	if !decodeJSON(w, r, &req) {
		return core.Staff{}, false
	}
	rate, err := parseAmount(req.DailyRate)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid daily rate")
		return core.Staff{}, false
	}
	return core.Staff{
		Name:      req.Name,
		Role:      req.Role,
		DailyRate: rate,
		Phone:     req.Phone,
	}, true
}

func (s *Server) handleCreateStaff(w http.ResponseWriter, r *http.Request) {
	member, ok := s.staffFromRequest(w, r)
	if !ok {
		return
	}
	created, err := s.repo.CreateStaff(r.Context(), member)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toStaffResponse(created))
}

func (s *Server) handleGetStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	member, err := s.repo.GetStaff(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toStaffResponse(member))
}

func (s *Server) handleUpdateStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	member, ok := s.staffFromRequest(w, r)
	if !ok {
		return
	}
	updated, err := s.repo.UpdateStaff(r.Context(), id, member)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toStaffResponse(updated))
}

func (s *Server) handleDeleteStaff(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := s.repo.DeleteStaff(r.Context(), id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req attendanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid date, want YYYY-MM-DD")
		return
	}
	marked, err := s.repo.MarkAttendance(r.Context(), core.Attendance{
		StaffID: id,
		Date:    date,
		Status:  core.AttendanceStatus(req.Status),
	})
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, attendanceResponse{
		StaffID: marked.StaffID,
		Date:    formatDate(marked.Date),
		Status:  string(marked.Status),
	})
}

func (s *Server) handleListAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	from, to, ok := periodQuery(w, r)
	if !ok {
		return
	}
	rows, err := s.repo.ListAttendance(r.Context(), id, from, to)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	out := make([]attendanceResponse, 0, len(rows))
	for _, a := range rows {
		out = append(out, attendanceResponse{
			StaffID: a.StaffID,
			Date:    formatDate(a.Date),
			Status:  string(a.Status),
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAdvance(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req advanceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid date, want YYYY-MM-DD")
		return
	}
	created, err := s.repo.CreateAdvance(r.Context(), core.Advance{
		StaffID: id,
		Amount:  amount,
		Date:    date,
		Notes:   req.Notes,
	})
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	s.invalidateSummaries()
	respondJSON(w, http.StatusCreated, advanceResponse{
		ID:      created.ID,
		StaffID: created.StaffID,
		Amount:  created.Amount.String(),
		Date:    formatDate(created.Date),
		Notes:   created.Notes,
	})
}

func (s *Server) handleListAdvances(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	from, to, ok := periodQuery(w, r)
	if !ok {
		return
	}
	advances, err := s.repo.ListAdvances(r.Context(), id, from, to)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	out := make([]advanceResponse, 0, len(advances))
	for _, a := range advances {
		out = append(out, advanceResponse{
			ID:      a.ID,
			StaffID: a.StaffID,
			Amount:  a.Amount.String(),
			Date:    formatDate(a.Date),
			Notes:   a.Notes,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handlePayroll(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	from, to, ok := periodQuery(w, r)
	if !ok {
		return
	}

	member, err := s.repo.GetStaff(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	attendance, err := s.repo.ListAttendance(r.Context(), id, from, to)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	advances, err := s.repo.ListAdvances(r.Context(), id, from, to)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	p := finance.ComputePayroll(member, attendance, advances, from, to)
	respondJSON(w, http.StatusOK, payrollResponse{
		StaffID:       p.StaffID,
		From:          formatDate(from),
		To:            formatDate(to),
		PresentDays:   p.PresentDays,
		HalfDays:      p.HalfDays,
		AbsentDays:    p.AbsentDays,
		EffectiveDays: p.EffectiveDays,
		Earned:        p.Earned.String(),
		Advances:      p.Advances.String(),
		NetPayable:    p.NetPayable.String(),
	})
}
