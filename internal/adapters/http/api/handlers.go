package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/okian/clientes/internal/adapters/repository"
	"github.com/okian/clientes/internal/domain/record"
	"github.com/okian/clientes/pkg/logger"
)

const (
	statusMessage          = "serviço está funcionando"
	importSuccessMessage   = "Clientes cadastrados com sucesso."
	invalidClientesMessage = "Formato inválido para a lista de clientes."
	remoteFailurePrefix    = "Erro ao buscar dados no endpoint externo: "

	operationSave   = "SAVE"
	operationUpdate = "UPDATE"
	operationDelete = "DELETE"
	messageSuccess  = "SUCCESS"
)

var validate = validator.New()

type handlers struct {
	deps   Dependencies
	logger logger.Logger
}

// Response bodies. Field order is part of the wire format.
type (
	saveResponse struct {
		Operation string         `json:"operation"`
		Message   string         `json:"message"`
		Item      *record.Record `json:"item"`
	}
	updateResponse struct {
		Operation         string                  `json:"operation"`
		Message           string                  `json:"message"`
		UpdatedAttributes repository.UpdateResult `json:"updatedAttributes"`
	}
	deleteResponse struct {
		Operation string                  `json:"operation"`
		Message   string                  `json:"message"`
		Item      repository.DeleteResult `json:"item"`
	}
	listResponse struct {
		Clientes []*record.Record `json:"clientes"`
	}
	importResponse struct {
		Mensagem            string `json:"mensagem"`
		ClientesCadastrados int    `json:"clientesCadastrados"`
	}
)

// Request bodies.
type (
	updateRequest struct {
		ClientesID  string          `json:"clientesId" validate:"required"`
		UpdateKey   string          `json:"updateKey" validate:"required"`
		UpdateValue json.RawMessage `json:"updateValue" validate:"required"`
	}
	deleteRequest struct {
		ClientesID string `json:"clientesId" validate:"required"`
	}
)

func decodeBody(body string, dst any) error {
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

func (h *handlers) status(context.Context, Request) (Response, error) {
	return jsonResponse(http.StatusOK, statusMessage), nil
}

func (h *handlers) getCliente(ctx context.Context, req Request) (Response, error) {
	id, ok := req.Query[record.IDField]
	if !ok {
		return Response{}, fmt.Errorf("%w: %s", ErrMissingParam, record.IDField)
	}
	item, err := h.deps.Get(ctx, id)
	if err != nil {
		return Response{}, err
	}
	return jsonResponse(http.StatusOK, item), nil
}

func (h *handlers) listClientes(ctx context.Context, _ Request) (Response, error) {
	items, err := h.deps.List(ctx)
	if err != nil {
		return Response{}, err
	}
	return jsonResponse(http.StatusOK, listResponse{Clientes: items}), nil
}

func (h *handlers) createCliente(ctx context.Context, req Request) (Response, error) {
	r, err := record.Parse([]byte(req.Body))
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	created, err := h.deps.Create(ctx, r)
	if err != nil {
		return Response{}, err
	}
	return jsonResponse(http.StatusOK, saveResponse{
		Operation: operationSave,
		Message:   messageSuccess,
		Item:      created,
	}), nil
}

func (h *handlers) updateCliente(ctx context.Context, req Request) (Response, error) {
	var in updateRequest
	if err := decodeBody(req.Body, &in); err != nil {
		return Response{}, err
	}
	value, err := record.ParseValue(in.UpdateValue)
	if err != nil {
		return Response{}, fmt.Errorf("%w: updateValue: %w", ErrBadRequest, err)
	}
	res, err := h.deps.UpdateField(ctx, in.ClientesID, in.UpdateKey, value)
	if err != nil {
		return Response{}, err
	}
	return jsonResponse(http.StatusOK, updateResponse{
		Operation:         operationUpdate,
		Message:           messageSuccess,
		UpdatedAttributes: res,
	}), nil
}

func (h *handlers) deleteCliente(ctx context.Context, req Request) (Response, error) {
	var in deleteRequest
	if err := decodeBody(req.Body, &in); err != nil {
		return Response{}, err
	}
	res, err := h.deps.Delete(ctx, in.ClientesID)
	if err != nil {
		return Response{}, err
	}
	return jsonResponse(http.StatusOK, deleteResponse{
		Operation: operationDelete,
		Message:   messageSuccess,
		Item:      res,
	}), nil
}

// loadExternalData runs the bulk import. A non-200 answer from the remote
// source is reported with status 200 and a text body.
func (h *handlers) loadExternalData(ctx context.Context, _ Request) (Response, error) {
	res, err := h.deps.Import(ctx)
	if err != nil {
		if isInvalidClientes(err) {
			h.logger.Warn(ctx, "import payload has an invalid clientes list", logger.Error(err))
			return jsonResponse(http.StatusBadRequest, invalidClientesMessage), nil
		}
		return Response{}, err
	}
	if !res.RemoteOK() {
		return jsonResponse(http.StatusOK, fmt.Sprintf("%s%d", remoteFailurePrefix, res.RemoteStatus)), nil
	}
	return jsonResponse(http.StatusOK, importResponse{
		Mensagem:            importSuccessMessage,
		ClientesCadastrados: res.Imported,
	}), nil
}
