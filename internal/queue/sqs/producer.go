package sqsqueue

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type Producer struct {
	SQS      *sqs.Client
	QueueURL string
}

// EnqueueDispatchTick posts a reminder-cycle trigger; the scheduler
// (EventBridge, cron, whatever) normally does this directly.
func (p *Producer) EnqueueDispatchTick(ctx context.Context, minutesBefore int) error {
	return p.send(ctx, Job{Type: JobEventReminder, MinutesBefore: minutesBefore})
}

func (p *Producer) EnqueueRegistration(ctx context.Context, eventID, studentID string) error {
	return p.send(ctx, Job{Type: JobNewRegistration, EventID: eventID, StudentID: studentID})
}

func (p *Producer) send(ctx context.Context, job Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}
	_, err = p.SQS.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    &p.QueueURL,
		MessageBody: str(string(body)),
	})
	return err
}

func str(s string) *string { return &s }
