// Package mailer sends email through a pluggable provider.
//
// A [Message] carries sender, recipients, subject, HTML and text bodies,
// headers and attachments. A [Sender] delivers it; [Client] wraps a sender
// with a default From address and BeforeSend hooks that may rewrite or
// reject a message before delivery:
//
//	sender, err := provider.New(cfg)
//	client := mailer.NewClient(sender,
//	    mailer.WithFrom(mailer.Address{Email: "team@example.com", Name: "Team"}),
//	    mailer.WithBeforeSend(func(ctx context.Context, m *mailer.Message) error {
//	        m.SetHeader("X-Entity-Ref", requestID(ctx))
//	        return nil
//	    }),
//	)
//
//	msg := &mailer.Message{Subject: "Report", Text: "Attached."}
//	msg.AddTo("ops@example.com", "Ops")
//	if err := msg.AddFileAttachment("/tmp/report.xlsx", "", ""); err != nil {
//	    return err
//	}
//	res, err := client.Send(ctx, msg)
//
// # Templates
//
// [Composer] builds messages from markdown files with YAML frontmatter.
// The frontmatter subject is itself a text template:
//
//	---
//	subject: Welcome {{.Name}}
//	---
//	Hello **{{.Name}}**!
//
// The markdown is executed with the data, converted to HTML with goldmark
// and wrapped in an optional html/template layout that receives the body
// as .Content. The executed markdown becomes the plain text body.
package mailer
