package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bbabur/immune-risk-next-sub001/internal/handler"
	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/internal/service/assessment"
	"github.com/bbabur/immune-risk-next-sub001/internal/service/patient"
)

type Handler struct {
	service       patient.PatientService
	assessmentSvc assessment.Service
}

func NewHandler(service patient.PatientService, assessmentSvc assessment.Service) *Handler {
	return &Handler{
		service:       service,
		assessmentSvc: assessmentSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)

		patients.POST("/:id/clinical-features", h.AddClinicalFeature)
		patients.GET("/:id/clinical-features", h.ListClinicalFeatures)

		patients.POST("/:id/lab-results", h.AddLabResults)
		patients.GET("/:id/lab-results", h.ListLabResults)

		patients.PUT("/:id/family-history", h.UpsertFamilyHistory)
		patients.GET("/:id/family-history", h.GetFamilyHistory)

		patients.POST("/:id/vaccinations", h.AddVaccination)
		patients.GET("/:id/vaccinations", h.ListVaccinations)
		patients.DELETE("/:id/vaccinations/:vaccinationId", h.DeleteVaccination)

		patients.GET("/:id/infections", h.ListInfections)
		patients.GET("/:id/hospitalizations", h.ListHospitalizations)

		patients.POST("/:id/assessments", h.SubmitClinicalAssessment)
		patients.POST("/:id/risk-assessments", h.AssessRisk)
		patients.GET("/:id/risk-assessments", h.ListRiskAssessments)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.CreatePatient(c.Request.Context(), &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	found, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(found))
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.service.UpdatePatient(c.Request.Context(), id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeletePatient(c.Request.Context(), id); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) ListPatients(c *gin.Context) {
	var filters model.PatientFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	patients, err := h.service.ListPatients(c.Request.Context(), &filters)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) AddClinicalFeature(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.CreateClinicalFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	feature, err := h.service.AddClinicalFeature(c.Request.Context(), id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(feature))
}

func (h *Handler) ListClinicalFeatures(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	features, err := h.service.ListClinicalFeatures(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(features))
}

func (h *Handler) AddLabResults(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.CreateLabResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	results, err := h.service.AddLabResults(c.Request.Context(), id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(results))
}

func (h *Handler) ListLabResults(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	results, err := h.service.ListLabResults(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(results))
}

func (h *Handler) UpsertFamilyHistory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.UpsertFamilyHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	history, err := h.service.UpsertFamilyHistory(c.Request.Context(), id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(history))
}

func (h *Handler) GetFamilyHistory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	history, err := h.service.GetFamilyHistory(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(history))
}

func (h *Handler) AddVaccination(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.CreateVaccinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	vaccination, err := h.service.AddVaccination(c.Request.Context(), id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(vaccination))
}

func (h *Handler) ListVaccinations(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	vaccinations, err := h.service.ListVaccinations(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(vaccinations))
}

func (h *Handler) DeleteVaccination(c *gin.Context) {
	vaccinationID, ok := parseID(c, "vaccinationId")
	if !ok {
		return
	}

	if err := h.service.DeleteVaccination(c.Request.Context(), vaccinationID); err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) ListInfections(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	infections, err := h.service.ListInfections(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(infections))
}

func (h *Handler) ListHospitalizations(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	hospitalizations, err := h.service.ListHospitalizations(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(hospitalizations))
}

// SubmitClinicalAssessment accepts the composite clinical submission, writes
// all of it atomically and runs a risk assessment over the result.
func (h *Handler) SubmitClinicalAssessment(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req model.ClinicalAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	submission, err := h.assessmentSvc.SubmitClinicalAssessment(c.Request.Context(), id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(submission))
}

func (h *Handler) AssessRisk(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	result, err := h.assessmentSvc.AssessRisk(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) ListRiskAssessments(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	assessments, err := h.assessmentSvc.ListAssessments(c.Request.Context(), id)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(assessments))
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid "+param))
		return uuid.Nil, false
	}
	return id, true
}
